package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"fekra/internal/domain"
)

// flakyModel fails a set number of times before succeeding.
type flakyModel struct {
	failures int
	err      error
	calls    int
}

func (m *flakyModel) Complete(ctx context.Context, req domain.ChatRequest) (*domain.Completion, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, m.err
	}
	return &domain.Completion{Message: domain.Message{Role: domain.RoleAssistant, Content: "ok"}}, nil
}

func testConfig() Config {
	return Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond, Multiplier: 2}
}

func TestRetryableModel_ShouldRetryTransientErrorsUntilSuccess(t *testing.T) {
	inner := &flakyModel{failures: 2, err: errors.New("openrouter api: 503 Service Unavailable")}
	m := NewRetryableModel(inner, testConfig())
	m.sleepFunc = func(time.Duration) {}

	out, err := m.Complete(context.Background(), domain.ChatRequest{})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if out.Message.Content != "ok" {
		t.Errorf("unexpected completion: %+v", out)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetryableModel_ShouldNotRetryNonRetryableErrors(t *testing.T) {
	inner := &flakyModel{failures: 10, err: errors.New("openrouter api: 401 Unauthorized")}
	m := NewRetryableModel(inner, testConfig())
	m.sleepFunc = func(time.Duration) {}

	if _, err := m.Complete(context.Background(), domain.ChatRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("non-retryable error should not be retried, got %d attempts", inner.calls)
	}
}

func TestRetryableModel_ShouldExhaustRetries(t *testing.T) {
	inner := &flakyModel{failures: 10, err: errors.New("connection refused")}
	m := NewRetryableModel(inner, testConfig())
	m.sleepFunc = func(time.Duration) {}

	_, err := m.Complete(context.Background(), domain.ChatRequest{})
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if inner.calls != 4 {
		t.Errorf("expected MaxRetries+1 attempts, got %d", inner.calls)
	}
}

func TestRetryableModel_ShouldApplyCappedExponentialBackoff(t *testing.T) {
	inner := &flakyModel{failures: 3, err: errors.New("429 Too Many Requests")}
	m := NewRetryableModel(inner, Config{MaxRetries: 3, InitialBackoff: 4 * time.Millisecond, MaxBackoff: 6 * time.Millisecond, Multiplier: 2})

	var slept []time.Duration
	m.sleepFunc = func(d time.Duration) { slept = append(slept, d) }

	if _, err := m.Complete(context.Background(), domain.ChatRequest{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	want := []time.Duration{4 * time.Millisecond, 6 * time.Millisecond, 6 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d: got %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestIsRetryable_ShouldClassifyErrors(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, false},
		{errors.New("openrouter api: 500 Internal Server Error"), true},
		{errors.New("429 rate limited"), true},
		{errors.New("connection refused"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("openrouter api: 400 Bad Request"), false},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Errorf("IsRetryable(%v): got %v, want %v", c.err, got, c.want)
		}
	}
}

func TestFromDomain_ShouldConvertMillisecondsAndDefaultUnsetFields(t *testing.T) {
	cfg := FromDomain(domain.RetryConfig{MaxRetries: 5, InitialBackoff: 100, MaxBackoff: 2000, Multiplier: 3})
	if cfg.MaxRetries != 5 || cfg.InitialBackoff != 100*time.Millisecond ||
		cfg.MaxBackoff != 2*time.Second || cfg.Multiplier != 3 {
		t.Errorf("unexpected conversion: %+v", cfg)
	}

	def := FromDomain(domain.RetryConfig{})
	if def != DefaultConfig() {
		t.Errorf("zero config should yield defaults, got %+v", def)
	}
}

func TestConfig_Validate_ShouldRejectBadRanges(t *testing.T) {
	good := DefaultConfig()
	if err := good.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	bad := good
	bad.Multiplier = 0.5
	if err := bad.Validate(); err == nil {
		t.Error("multiplier < 1 should fail validation")
	}
}
