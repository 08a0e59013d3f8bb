package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"fekra/internal/domain"
)

// =============================================================================
// RetryConfig
// =============================================================================

// Config controls retry behaviour for model API calls. Retries live only at
// the model transport layer; tool executors never retry.
type Config struct {
	MaxRetries     int           // Maximum number of retry attempts (0 = no retries)
	InitialBackoff time.Duration // Delay before first retry
	MaxBackoff     time.Duration // Upper bound on backoff duration
	Multiplier     float64       // Backoff multiplier (e.g. 2.0 for exponential)
}

// DefaultConfig returns sensible retry defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// FromDomain converts the persisted millisecond-based config into a Config,
// substituting defaults for unset fields.
func FromDomain(rc domain.RetryConfig) Config {
	cfg := DefaultConfig()
	if rc.MaxRetries > 0 {
		cfg.MaxRetries = rc.MaxRetries
	}
	if rc.InitialBackoff > 0 {
		cfg.InitialBackoff = time.Duration(rc.InitialBackoff) * time.Millisecond
	}
	if rc.MaxBackoff > 0 {
		cfg.MaxBackoff = time.Duration(rc.MaxBackoff) * time.Millisecond
	}
	if rc.Multiplier > 0 {
		cfg.Multiplier = float64(rc.Multiplier)
	}
	return cfg
}

// Validate checks that all Config fields are within acceptable ranges.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("retry: MaxRetries must be >= 0")
	}
	if c.InitialBackoff <= 0 {
		return errors.New("retry: InitialBackoff must be > 0")
	}
	if c.MaxBackoff <= 0 {
		return errors.New("retry: MaxBackoff must be > 0")
	}
	if c.Multiplier < 1.0 {
		return errors.New("retry: Multiplier must be >= 1.0")
	}
	return nil
}

// =============================================================================
// Error Classification
// =============================================================================

// retryableStatusCodes are HTTP status codes that indicate a transient failure.
var retryableStatusCodes = []string{"429", "500", "502", "503", "504", "529"}

// IsRetryable returns true when err represents a transient failure that may
// succeed on retry (5xx, 429, timeout, connection refused, EOF).
// Context errors (Canceled, DeadlineExceeded) are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are never retryable — the caller chose to cancel.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// net.Error timeout (wraps OS-level i/o timeout)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()

	// HTTP status codes that are retryable
	for _, code := range retryableStatusCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}

	// Connection-level transient failures
	if strings.Contains(msg, "connection refused") {
		return true
	}
	if strings.Contains(msg, "EOF") {
		return true
	}

	return false
}

// =============================================================================
// RetryableModel (Decorator)
// =============================================================================

// RetryableModel wraps a ChatModel with retry-on-transient-error logic.
type RetryableModel struct {
	inner     domain.ChatModel
	config    Config
	sleepFunc func(time.Duration) // injectable for testing
}

// NewRetryableModel returns a decorator that retries Complete calls on
// transient errors. inner must not be nil.
func NewRetryableModel(inner domain.ChatModel, cfg Config) *RetryableModel {
	if inner == nil {
		panic("retry: inner model must not be nil")
	}
	return &RetryableModel{
		inner:     inner,
		config:    cfg,
		sleepFunc: time.Sleep,
	}
}

// Complete calls the inner model and retries on transient errors with
// exponential backoff. Returns the first successful result, or the last
// error after retries are exhausted.
func (m *RetryableModel) Complete(ctx context.Context, req domain.ChatRequest) (*domain.Completion, error) {
	var lastErr error
	backoff := m.config.InitialBackoff

	for attempt := 0; attempt <= m.config.MaxRetries; attempt++ {
		result, err := m.inner.Complete(ctx, req)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}

		// Don't sleep after the last attempt
		if attempt == m.config.MaxRetries {
			break
		}

		m.sleepFunc(backoff)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		next := time.Duration(float64(backoff) * m.config.Multiplier)
		if next > m.config.MaxBackoff {
			next = m.config.MaxBackoff
		}
		backoff = next
	}

	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", m.config.MaxRetries+1, lastErr)
}

var _ domain.ChatModel = (*RetryableModel)(nil)
