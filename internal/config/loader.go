package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file and environment variables.
func Load(configPath string) (*Config, *Secrets, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ValidateInputs(); err != nil {
		return nil, nil, fmt.Errorf("input validation failed: %w", err)
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	return &cfg, secrets, nil
}

// Default returns a configuration populated with defaults, for library use
// and tests. The model endpoint still has to be filled in by the caller.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Pipeline.Language == "" {
		cfg.Pipeline.Language = "english"
	}
	if cfg.Pipeline.ContentType == "" {
		cfg.Pipeline.ContentType = "general"
	}
	if cfg.Pipeline.MaxChunkChars == 0 {
		cfg.Pipeline.MaxChunkChars = 16000
	}
	if cfg.Pipeline.MaxValidationRetries == 0 {
		cfg.Pipeline.MaxValidationRetries = 2
	}
	if cfg.Pipeline.ValidationThreshold == 0 {
		cfg.Pipeline.ValidationThreshold = 0.3
	}
	if cfg.Pipeline.ValidationSampleSize == 0 {
		cfg.Pipeline.ValidationSampleSize = 20
	}
	if cfg.Pipeline.InterChunkDelayMS == 0 {
		cfg.Pipeline.InterChunkDelayMS = 500
	}

	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = 0.7
	}
	if cfg.Model.TopP == 0 {
		cfg.Model.TopP = 1.0
	}
	if cfg.Model.MaxOutputTokens == 0 {
		cfg.Model.MaxOutputTokens = 4096
	}
	if cfg.Model.RateLimitPerMinute == 0 {
		cfg.Model.RateLimitPerMinute = 60
	}
	if cfg.Model.MaxRetries == 0 {
		cfg.Model.MaxRetries = 3
	}
	if cfg.Model.BaseRetryDelayMS == 0 {
		cfg.Model.BaseRetryDelayMS = 1000
	}
	if cfg.Model.HTTPTimeoutSeconds == 0 {
		cfg.Model.HTTPTimeoutSeconds = 120
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
}
