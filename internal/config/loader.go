package config

import (
	"encoding/json"
	"fmt"
	"os"

	"fekra/internal/domain"
)

// DefaultPath is the config file the CLI reads when FEKRA_CONFIG is unset.
const DefaultPath = "fekra.json"

// EnvPath is the environment variable that overrides the config file path.
const EnvPath = "FEKRA_CONFIG"

// marshalIndent and writeFile are used by WriteDefault and Save; tests may
// replace them to force errors.
var (
	marshalIndent = json.MarshalIndent
	writeFile     = os.WriteFile
)

// Path resolves the config file location: $FEKRA_CONFIG when set, otherwise
// DefaultPath in the working directory.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Default returns the configuration a fresh install starts from. The model
// API key is deliberately absent: it lives in the environment variable named
// by Model.APIKeyEnv, never in the file.
func Default() *domain.Config {
	return &domain.Config{
		Gateway: domain.GatewayConfig{Port: 8080},
		Model: domain.ModelConfig{
			Name:      "deepseek/deepseek-chat",
			BaseURL:   "https://openrouter.ai/api/v1/chat/completions",
			APIKeyEnv: "OPENROUTER_API_KEY",
		},
		Store: domain.StoreConfig{URL: "file:fekra.db"},
		Infra: domain.InfraConfig{LogFormat: "text", LogLevel: "info"},
		Retry: domain.RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 500,
			MaxBackoff:     30000,
			Multiplier:     2,
		},
	}
}

// WriteDefault writes a default Config to path (e.g. fekra.json). Parent
// directories are not created.
func WriteDefault(path string) error {
	data, err := marshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data, 0644)
}

// Load reads path, unmarshals into domain.Config, and fills unset fields
// from defaults so a sparse config file still yields a runnable setup.
// Returns an error if the file is missing or invalid JSON.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	return c, nil
}

// APIKey resolves the model API key from the environment variable the config
// names. Empty when unset.
func APIKey(cfg *domain.Config) string {
	env := cfg.Model.APIKeyEnv
	if env == "" {
		env = "OPENROUTER_API_KEY"
	}
	return os.Getenv(env)
}
