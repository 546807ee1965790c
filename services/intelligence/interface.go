package ai

import (
	"context"
	"errors"

	"lexassist/models"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned no content")

// Prompt is one generation request.
type Prompt struct {
	System      string
	History     []models.AITurn
	Message     string
	Temperature float32
	MaxTokens   int32
}

// LLM generates text for a prompt.
type LLM interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// ContextStore keeps the recent turns of a chat session.
type ContextStore interface {
	// Get returns the cached context and whether it was present.
	Get(ctx context.Context, sessionID string) (*models.AIContext, bool, error)
	Set(ctx context.Context, sessionID string, aiCtx *models.AIContext) error
	Clear(ctx context.Context, sessionID string) error
}
