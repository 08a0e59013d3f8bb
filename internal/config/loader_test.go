package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDefaultAndLoad_ShouldRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fekra.json")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Port != 8080 {
		t.Errorf("port: %d", cfg.Gateway.Port)
	}
	if cfg.Model.Name != "deepseek/deepseek-chat" {
		t.Errorf("model: %q", cfg.Model.Name)
	}
	if cfg.Model.APIKeyEnv != "OPENROUTER_API_KEY" {
		t.Errorf("apiKeyEnv: %q", cfg.Model.APIKeyEnv)
	}
}

func TestLoad_ShouldFillDefaultsForSparseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fekra.json")
	if err := os.WriteFile(path, []byte(`{"gateway":{"port":9999}}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Port != 9999 {
		t.Errorf("overridden port lost: %d", cfg.Gateway.Port)
	}
	if cfg.Store.URL != "file:fekra.db" {
		t.Errorf("store default lost: %q", cfg.Store.URL)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("retry default lost: %d", cfg.Retry.MaxRetries)
	}
}

func TestLoad_ShouldErrorOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestLoad_ShouldErrorOnInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fekra.json")
	os.WriteFile(path, []byte("{nope"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestPath_ShouldHonorEnvOverride(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.json")
	if got := Path(); got != "/tmp/custom.json" {
		t.Errorf("Path: %q", got)
	}
	t.Setenv(EnvPath, "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path without env: %q", got)
	}
}

func TestAPIKey_ShouldReadConfiguredEnvVar(t *testing.T) {
	cfg := Default()
	cfg.Model.APIKeyEnv = "FEKRA_TEST_KEY"
	t.Setenv("FEKRA_TEST_KEY", "sk-123")
	if got := APIKey(cfg); got != "sk-123" {
		t.Errorf("APIKey: %q", got)
	}
}
