package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Model.BaseURL = "https://api.example.com/v1"
	cfg.Model.ModelName = "test-model"
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Pipeline.Language != "english" {
		t.Errorf("default language = %q, want english", cfg.Pipeline.Language)
	}
	if cfg.Pipeline.ContentType != "general" {
		t.Errorf("default content type = %q, want general", cfg.Pipeline.ContentType)
	}
	if cfg.Pipeline.MaxChunkChars != 16000 {
		t.Errorf("default max chunk chars = %d, want 16000", cfg.Pipeline.MaxChunkChars)
	}
	if cfg.Pipeline.MaxValidationRetries != 2 {
		t.Errorf("default validation retries = %d, want 2", cfg.Pipeline.MaxValidationRetries)
	}
	if cfg.Pipeline.ValidationThreshold != 0.3 {
		t.Errorf("default validation threshold = %v, want 0.3", cfg.Pipeline.ValidationThreshold)
	}
	if cfg.Model.MaxRetries != 3 {
		t.Errorf("default max retries = %d, want 3", cfg.Model.MaxRetries)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("default output dir = %q, want output", cfg.Output.Dir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.Model.BaseURL = "" },
			wantErr: "base_url",
		},
		{
			name:    "missing model name",
			mutate:  func(c *Config) { c.Model.ModelName = "" },
			wantErr: "model_name",
		},
		{
			name:    "zero chunk bound",
			mutate:  func(c *Config) { c.Pipeline.MaxChunkChars = 0 },
			wantErr: "max_chunk_chars",
		},
		{
			name:    "negative validation retries",
			mutate:  func(c *Config) { c.Pipeline.MaxValidationRetries = -1 },
			wantErr: "max_validation_retries",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Pipeline.ValidationThreshold = 1.5 },
			wantErr: "validation_threshold",
		},
		{
			name:    "negative inter-chunk delay",
			mutate:  func(c *Config) { c.Pipeline.InterChunkDelayMS = -10 },
			wantErr: "inter_chunk_delay_ms",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Model.Temperature = 3.0 },
			wantErr: "temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid inputs",
			mutate: func(c *Config) {},
		},
		{
			name:    "uppercase language tag",
			mutate:  func(c *Config) { c.Pipeline.Language = "English" },
			wantErr: true,
		},
		{
			name:    "language tag with spaces",
			mutate:  func(c *Config) { c.Pipeline.Language = "en glish" },
			wantErr: true,
		},
		{
			name:    "model name with control chars",
			mutate:  func(c *Config) { c.Model.ModelName = "bad\x00model" },
			wantErr: true,
		},
		{
			name:    "base URL without scheme",
			mutate:  func(c *Config) { c.Model.BaseURL = "api.example.com" },
			wantErr: true,
		},
		{
			name:   "hyphenated language tag",
			mutate: func(c *Config) { c.Pipeline.Language = "pt-br" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.ValidateInputs()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[pipeline]
language = "french"
max_validation_retries = 1

[model]
base_url = "https://api.example.com/v1"
model_name = "some-model"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, secrets, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if secrets == nil {
		t.Fatal("Load() returned nil secrets")
	}

	if cfg.Pipeline.Language != "french" {
		t.Errorf("language = %q, want french", cfg.Pipeline.Language)
	}
	if cfg.Pipeline.MaxValidationRetries != 1 {
		t.Errorf("max_validation_retries = %d, want 1", cfg.Pipeline.MaxValidationRetries)
	}
	// Unset fields pick up defaults.
	if cfg.Pipeline.ContentType != "general" {
		t.Errorf("content_type = %q, want general default", cfg.Pipeline.ContentType)
	}
	if cfg.Model.MaxOutputTokens != 4096 {
		t.Errorf("max_output_tokens = %d, want 4096 default", cfg.Model.MaxOutputTokens)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[model]
base_url = "https://api.example.com/v1"
model_name = "some-model"
temperature = 9.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("Load() accepted out-of-range temperature")
	}
}

func TestGetAPIKey(t *testing.T) {
	secrets := &Secrets{APIKeys: map[string]string{
		"generic":    "generic-key",
		"openai":     "openai-key",
		"openrouter": "router-key",
	}}

	tests := []struct {
		baseURL  string
		expected string
	}{
		{"https://api.openai.com/v1", "openai-key"},
		{"https://openrouter.ai/api/v1", "router-key"},
		{"https://api.together.xyz/v1", "generic-key"},
		{"http://localhost:8080/v1", "generic-key"},
	}

	for _, tt := range tests {
		if got := secrets.GetAPIKey(tt.baseURL); got != tt.expected {
			t.Errorf("GetAPIKey(%q) = %q, want %q", tt.baseURL, got, tt.expected)
		}
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	if cfg.Model.BaseRetryDelay().Milliseconds() != 1000 {
		t.Errorf("BaseRetryDelay = %v, want 1s", cfg.Model.BaseRetryDelay())
	}
	if cfg.Model.HTTPTimeout().Seconds() != 120 {
		t.Errorf("HTTPTimeout = %v, want 120s", cfg.Model.HTTPTimeout())
	}
	if cfg.Pipeline.InterChunkDelay().Milliseconds() != 500 {
		t.Errorf("InterChunkDelay = %v, want 500ms", cfg.Pipeline.InterChunkDelay())
	}
}
