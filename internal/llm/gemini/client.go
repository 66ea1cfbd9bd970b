// Package gemini implements llm.Client on the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-insights/internal/llm"
	"resume-insights/internal/shared/telemetry"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	defaultTimeout = 90 * time.Second
	temperature    = float32(0.2)
)

// Config configures the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint. Tests point it at an httptest server.
	BaseURL string
}

// Client calls Gemini's generateContent endpoint in JSON mode.
type Client struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

// New constructs a Gemini client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrNotConfigured
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{models: gc.Models, model: model, timeout: timeout}, nil
}

// Generate sends the prompt and returns the model's text.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temp := temperature
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temp,
	})
	if err != nil {
		return "", classify(err)
	}

	text := resp.Text()
	telemetry.Info("gemini.generate", map[string]any{
		"task":        string(req.Task),
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
		"chars":       len(text),
	})
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

// classify marks rate limiting and server-side failures as transient.
func classify(err error) error {
	if transient(err) {
		return fmt.Errorf("%w: gemini: %v", llm.ErrTransient, err)
	}
	return fmt.Errorf("gemini generate: %w", err)
}

func transient(err error) bool {
	// genai returns APIError by value.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	msg := strings.ToUpper(err.Error())
	for _, status := range []string{"UNAVAILABLE", "RESOURCE_EXHAUSTED", "DEADLINE_EXCEEDED"} {
		if strings.Contains(msg, status) {
			return true
		}
	}
	return false
}
