// Package chat is an OpenAI-compatible chat completion client used by the
// assessment stage agents. All three upstream providers expose the same
// /chat/completions surface, so one client serves them all.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/internal/httpclient"
	"github.com/ravencare/ravencare/logger"
)

const (
	// DefaultTimeout bounds one completion round trip
	DefaultTimeout = 60 * time.Second

	// maxRetries for transient failures
	maxRetries = 3
)

// Config holds chat client configuration
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float64
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client is a rate-limited chat completion client with retry on transient
// network failures.
type Client struct {
	config     Config
	httpClient *httpclient.SaferClient
	limiter    *rate.Limiter
}

// NewClient creates a chat client for one provider endpoint.
func NewClient(config Config) *Client {
	if config.Temperature == 0 {
		config.Temperature = 0.2 // Deterministic default
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 1000
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 10
	}

	blockPrivateIP := true
	saferClient := httpclient.New(config.Timeout, httpclient.Options{
		BlockPrivateIP: &blockPrivateIP,
	})

	return &Client{
		config:     config,
		httpClient: saferClient,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerMinute)/60.0, 1),
	}
}

// Request is one completion exchange.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	JSONResponse bool // ask the provider for a JSON object response
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response carries the assistant's reply.
type Response struct {
	Content string
	Usage   Usage
}

// wire types for the /chat/completions endpoint

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// IsConfigured returns true if the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// SetHTTPClient allows overriding the HTTP client for testing
func (c *Client) SetHTTPClient(client *httpclient.SaferClient) {
	c.httpClient = client
}

// Complete sends one chat completion request, honoring the rate limit and
// retrying transient failures with linear backoff.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if !c.IsConfigured() {
		return nil, errors.Wrap(errors.ErrServiceUnavailable, "chat API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter interrupted")
	}

	wireReq := completionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	}
	if req.JSONResponse {
		wireReq.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp *completionResponse
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * time.Second
			logger.Debugw("Retrying chat completion",
				"attempt", attempt,
				"delay", delay,
				"model", c.config.Model)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err = c.createCompletion(ctx, wireReq)
		if err == nil {
			break
		}

		if !isRetryableError(err) {
			return nil, errors.Wrapf(err, "chat completion failed (model %s)", c.config.Model)
		}
	}

	if err != nil {
		return nil, errors.Wrapf(err, "chat completion failed after %d retries (model %s)",
			maxRetries, c.config.Model)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.Newf("chat completion returned no choices (model %s)", c.config.Model)
	}

	return &Response{
		Content: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage:   resp.Usage,
	}, nil
}

// createCompletion performs one HTTP round trip.
func (c *Client) createCompletion(ctx context.Context, req completionRequest) (*completionResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("API request failed with status %d: %s",
			resp.StatusCode, string(respBody))
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	return &completion, nil
}

// isRetryableError checks if an error is worth retrying
func isRetryableError(err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}

	if opErr, ok := err.(*net.OpError); ok {
		if errno, ok := opErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT:
				return true
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	transient := []string{
		"connection reset by peer",
		"connection refused",
		"timeout",
		"temporary failure",
		"network is unreachable",
		"i/o timeout",
		"rate limit",
		"status 429",
		"status 500",
		"status 502",
		"status 503",
		"status 504",
	}

	for _, marker := range transient {
		if strings.Contains(errStr, marker) {
			return true
		}
	}

	return false
}
