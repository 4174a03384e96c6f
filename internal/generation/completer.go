package generation

import (
	"context"
	"fmt"
)

// ContentTypeText is the only completion block type the generator accepts.
const ContentTypeText = "text"

type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Completion struct {
	Type         string
	Text         string
	InputTokens  int
	OutputTokens int
}

// Completer is the language-model collaborator: one prompt in, one completion out.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// APIError carries the HTTP status of a failed collaborator call when one is known.
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api status %d: %v", e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
