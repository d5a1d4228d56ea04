package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Model    ModelConfig    `toml:"model"`
	Output   OutputConfig   `toml:"output"`
}

// PipelineConfig holds card-generation pipeline settings.
type PipelineConfig struct {
	Language             string  `toml:"language"`               // Target output language tag (default: english)
	ContentType          string  `toml:"content_type"`           // Prompt style: academic, technical, general
	MaxChunkChars        int     `toml:"max_chunk_chars"`        // Soft upper bound per chunk (default: 16000)
	MaxValidationRetries int     `toml:"max_validation_retries"` // Language-retry budget per chunk before fallback (default: 2)
	ValidationThreshold  float64 `toml:"validation_threshold"`   // Minimum pattern-match ratio to accept a language (default: 0.3)
	ValidationSampleSize int     `toml:"validation_sample_size"` // Records sampled per validation pass (default: 20)
	InterChunkDelayMS    int     `toml:"inter_chunk_delay_ms"`   // Courtesy pause between chunk requests (default: 500)
	ShowProgress         bool    `toml:"show_progress"`          // Render a progress bar during generation
}

// ModelConfig represents configuration for the generation model endpoint.
type ModelConfig struct {
	BaseURL            string  `toml:"base_url"`
	ModelName          string  `toml:"model_name"`
	Temperature        float64 `toml:"temperature"`
	TopP               float64 `toml:"top_p"`
	MaxOutputTokens    int     `toml:"max_output_tokens"`
	RateLimitPerMinute int     `toml:"rate_limit_per_minute"`
	MaxRetries         int     `toml:"max_retries"`           // Transport retry attempts (default: 3)
	BaseRetryDelayMS   int     `toml:"base_retry_delay_ms"`   // Exponential backoff base (default: 1000)
	HTTPTimeoutSeconds int     `toml:"http_timeout_seconds"`  // Per-request timeout (default: 120)
}

// OutputConfig holds card sink settings.
type OutputConfig struct {
	Dir string `toml:"dir"` // Session directories are created under here (default: output)
}

// BaseRetryDelay returns the backoff base as a duration.
func (mc ModelConfig) BaseRetryDelay() time.Duration {
	return time.Duration(mc.BaseRetryDelayMS) * time.Millisecond
}

// HTTPTimeout returns the per-request timeout as a duration.
func (mc ModelConfig) HTTPTimeout() time.Duration {
	return time.Duration(mc.HTTPTimeoutSeconds) * time.Second
}

// InterChunkDelay returns the courtesy pause as a duration.
func (pc PipelineConfig) InterChunkDelay() time.Duration {
	return time.Duration(pc.InterChunkDelayMS) * time.Millisecond
}

// Validate checks if the configuration is valid. Tag membership (language,
// content type) is checked by the orchestrator against the prompt composer's
// supported set; this covers the numeric and endpoint surface.
func (c *Config) Validate() error {
	if c.Pipeline.Language == "" {
		return fmt.Errorf("pipeline.language is required")
	}
	if c.Pipeline.ContentType == "" {
		return fmt.Errorf("pipeline.content_type is required")
	}
	if c.Pipeline.MaxChunkChars < 1 {
		return fmt.Errorf("pipeline.max_chunk_chars must be at least 1 (got %d)", c.Pipeline.MaxChunkChars)
	}
	if c.Pipeline.MaxValidationRetries < 0 {
		return fmt.Errorf("pipeline.max_validation_retries must not be negative (got %d)", c.Pipeline.MaxValidationRetries)
	}
	if c.Pipeline.ValidationThreshold < 0 || c.Pipeline.ValidationThreshold > 1.0 {
		return fmt.Errorf("pipeline.validation_threshold must be between 0.0 and 1.0 (got %.2f)", c.Pipeline.ValidationThreshold)
	}
	if c.Pipeline.ValidationSampleSize < 1 {
		return fmt.Errorf("pipeline.validation_sample_size must be at least 1 (got %d)", c.Pipeline.ValidationSampleSize)
	}
	if c.Pipeline.InterChunkDelayMS < 0 {
		return fmt.Errorf("pipeline.inter_chunk_delay_ms must not be negative (got %d)", c.Pipeline.InterChunkDelayMS)
	}

	if c.Model.BaseURL == "" {
		return fmt.Errorf("model.base_url is required")
	}
	if c.Model.ModelName == "" {
		return fmt.Errorf("model.model_name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be between 0 and 2 (got %.2f)", c.Model.Temperature)
	}
	if c.Model.TopP < 0 || c.Model.TopP > 1 {
		return fmt.Errorf("model.top_p must be between 0 and 1 (got %.2f)", c.Model.TopP)
	}
	if c.Model.MaxOutputTokens < 1 {
		return fmt.Errorf("model.max_output_tokens must be at least 1 (got %d)", c.Model.MaxOutputTokens)
	}
	if c.Model.RateLimitPerMinute < 1 {
		return fmt.Errorf("model.rate_limit_per_minute must be at least 1 (got %d)", c.Model.RateLimitPerMinute)
	}
	if c.Model.MaxRetries < 0 {
		return fmt.Errorf("model.max_retries must not be negative (got %d)", c.Model.MaxRetries)
	}
	if c.Model.BaseRetryDelayMS < 1 {
		return fmt.Errorf("model.base_retry_delay_ms must be at least 1 (got %d)", c.Model.BaseRetryDelayMS)
	}

	return nil
}

// Secrets holds sensitive credentials loaded from environment variables.
type Secrets struct {
	APIKeys map[string]string
}

// LoadSecrets loads API keys from environment variables.
func LoadSecrets() (*Secrets, error) {
	secrets := &Secrets{
		APIKeys: make(map[string]string),
	}

	// Generic key works with any OpenAI-compatible provider.
	if key := os.Getenv("API_KEY"); key != "" {
		secrets.APIKeys["generic"] = key
	}

	// Provider-specific keys override the generic one.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		secrets.APIKeys["openai"] = key
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		secrets.APIKeys["openrouter"] = key
	}
	if key := os.Getenv("TOGETHER_API_KEY"); key != "" {
		secrets.APIKeys["together"] = key
	}

	return secrets, nil
}

// GetAPIKey returns the API key for a given base URL, falling back to the
// generic key, then to empty (a local server without auth).
func (s *Secrets) GetAPIKey(baseURL string) string {
	if strings.Contains(baseURL, "openai.com") {
		if key := s.APIKeys["openai"]; key != "" {
			return key
		}
	}
	if strings.Contains(baseURL, "openrouter.ai") {
		if key := s.APIKeys["openrouter"]; key != "" {
			return key
		}
	}
	if strings.Contains(baseURL, "together.xyz") || strings.Contains(baseURL, "together.ai") {
		if key := s.APIKeys["together"]; key != "" {
			return key
		}
	}

	return s.APIKeys["generic"]
}
