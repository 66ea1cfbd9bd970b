package llm

import (
	"context"
	"errors"
)

// Task names a provider call. Each task has its own prompt and response shape.
type Task string

const (
	TaskAnalyze   Task = "analyze"
	TaskJobMatch  Task = "job-match"
	TaskCareerMap Task = "career-map"
	TaskRewrite   Task = "rewrite"
	TaskTailor    Task = "tailor"
)

// Request is a single text-generation call.
type Request struct {
	Task   Task
	Prompt string
}

// Client abstracts the text-generation provider. Implementations return the
// provider's raw text; callers normalize it.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

var (
	// ErrNotConfigured is returned by the placeholder client.
	ErrNotConfigured = errors.New("analysis provider not configured")
	// ErrTransient marks provider failures worth one retry.
	ErrTransient = errors.New("transient provider failure")
	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("provider returned empty response")
)

// PlaceholderClient is used when no provider key is configured.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
