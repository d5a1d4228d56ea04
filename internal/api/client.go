// Package api implements the generation client: a single OpenAI-compatible
// chat-completion endpoint wrapped in rate limiting and bounded retry. One
// call to Generate is one logical request to the generation service; all
// transport-level unreliability is absorbed here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lamim/cardforge/internal/config"
	"github.com/lamim/cardforge/internal/metrics"
)

const (
	// RateLimitBackoffMultiplier grows the backoff faster (3^n) when the
	// provider is explicitly telling us to slow down.
	RateLimitBackoffMultiplier = 3
)

// Client sends prompts to one generation model endpoint.
type Client struct {
	httpClient *http.Client
	modelCfg   config.ModelConfig
	apiKey     string
	limiter    *rate.Limiter
	collector  *metrics.Collector
	logger     *slog.Logger
}

// NewClient creates a client bound to the configured model endpoint.
// collector may be nil.
func NewClient(modelCfg config.ModelConfig, apiKey string, collector *metrics.Collector, logger *slog.Logger) *Client {
	rps := float64(modelCfg.RateLimitPerMinute) / 60.0
	burst := modelCfg.RateLimitPerMinute / 5
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: modelCfg.HTTPTimeout(),
		},
		modelCfg:  modelCfg,
		apiKey:    apiKey,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		collector: collector,
		logger:    logger,
	}
}

// Generate sends one prompt to the generation service and returns the raw
// response text. Transient failures (network errors, retryable status codes,
// empty completions) are retried with exponential backoff up to the
// configured budget; the returned error carries the last underlying cause.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req := ChatCompletionRequest{
		Model: c.modelCfg.ModelName,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		Temperature: c.modelCfg.Temperature,
		TopP:        c.modelCfg.TopP,
		MaxTokens:   c.modelCfg.MaxOutputTokens,
		N:           1,
	}

	var lastErr error
	for attempt := 0; attempt <= c.modelCfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.modelCfg.BaseRetryDelay()
			if apiErr, ok := lastErr.(*APIError); ok && apiErr.StatusCode == http.StatusTooManyRequests {
				backoff = time.Duration(math.Pow(RateLimitBackoffMultiplier, float64(attempt))) * c.modelCfg.BaseRetryDelay()
			}

			c.logger.Warn("Retrying generation request",
				"attempt", attempt,
				"max_retries", c.modelCfg.MaxRetries,
				"backoff", backoff,
				"model", c.modelCfg.ModelName)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		text, err := c.doRequest(ctx, req)
		c.collector.RecordAPIRequest(c.modelCfg.ModelName, time.Since(start), err == nil)
		if err == nil {
			return text, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, req ChatCompletionRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.modelCfg.BaseURL, "/") + "/chat/completions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	} else {
		c.logger.Debug("API request without key", "endpoint", endpoint)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &APIError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
		}
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &APIError{
			Message:   fmt.Sprintf("failed to read response: %v", err),
			Retryable: true,
		}
	}

	if httpResp.StatusCode != http.StatusOK {
		retryable := isStatusCodeRetryable(httpResp.StatusCode)

		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return "", &APIError{
				Message:    errResp.Error.Message,
				StatusCode: httpResp.StatusCode,
				Type:       errResp.Error.Type,
				Code:       errResp.Error.Code,
				Retryable:  retryable,
			}
		}

		return "", &APIError{
			Message:    fmt.Sprintf("API request failed with status %d: %s", httpResp.StatusCode, string(respBody)),
			StatusCode: httpResp.StatusCode,
			Retryable:  retryable,
		}
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		// A 200 with an unparseable body is the provider misbehaving, not
		// the caller; treat like any other transient transport fault.
		return "", &APIError{
			Message:   fmt.Sprintf("failed to parse response: %v", err),
			Retryable: true,
		}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		// Empty completions are retried identically to network errors.
		return "", &APIError{
			Message:   "empty completion in response",
			Retryable: true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

func isRetryable(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Retryable
	}
	return false
}

func isStatusCodeRetryable(statusCode int) bool {
	// Retry on rate limits and server errors.
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}

// APIError represents an error returned by the generation service.
type APIError struct {
	Message    string
	StatusCode int
	Type       string
	Code       string
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}
