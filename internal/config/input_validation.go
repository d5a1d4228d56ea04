package config

import (
	"fmt"
	"net/url"
	"unicode"
)

const (
	// MaxModelNameLength is the maximum allowed length for the model name.
	MaxModelNameLength = 100

	// MaxLanguageTagLength is the maximum allowed length for a language tag.
	MaxLanguageTagLength = 40
)

// ValidateInputs performs additional validation on user-controllable fields
// that end up in filesystem paths, HTTP requests, or prompts.
func (c *Config) ValidateInputs() error {
	if err := validateLanguageTag(c.Pipeline.Language); err != nil {
		return fmt.Errorf("invalid pipeline.language: %w", err)
	}

	if len(c.Model.ModelName) > MaxModelNameLength {
		return fmt.Errorf("model.model_name exceeds maximum length of %d (got %d)",
			MaxModelNameLength, len(c.Model.ModelName))
	}
	if containsControlChars(c.Model.ModelName) {
		return fmt.Errorf("model.model_name contains invalid control characters")
	}

	return validateBaseURL(c.Model.BaseURL)
}

// validateLanguageTag checks the shape of a language tag; membership in the
// supported set is the prompt composer's concern.
func validateLanguageTag(tag string) error {
	if len(tag) > MaxLanguageTagLength {
		return fmt.Errorf("exceeds maximum length of %d characters (got %d)",
			MaxLanguageTagLength, len(tag))
	}
	for _, r := range tag {
		if !unicode.IsLower(r) && r != '-' {
			return fmt.Errorf("must contain only lowercase letters and hyphens (got %q)", tag)
		}
	}
	return nil
}

// validateBaseURL checks that the base URL is properly formatted and safe.
func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("model.base_url is invalid: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("model.base_url must use http or https scheme (got %s)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("model.base_url must have a host")
	}

	return nil
}

// containsControlChars checks if a string contains control characters
// (excluding newlines, tabs, and carriage returns).
func containsControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}
