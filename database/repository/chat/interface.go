package chatRepo

import (
	"context"
	"time"

	"lexassist/models"
)

// ChatRepository persists chat sessions and their messages.
type ChatRepository interface {
	CreateSession(ctx context.Context, s *models.ChatSession) error
	// GetSession returns nil, nil when absent.
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	// ListSessions returns the user's sessions, most recently active first.
	ListSessions(ctx context.Context, userID string, limit int64) ([]models.ChatSession, error)
	// TouchSession records activity: sets lastActivityAt and adds to the counters.
	TouchSession(ctx context.Context, id string, at time.Time, messages int, hours float64) error

	InsertMessage(ctx context.Context, m *models.ChatMessage) error
	// ListMessages returns the last limit messages in chronological order (limit <= 0: all).
	ListMessages(ctx context.Context, sessionID string, limit int64) ([]models.ChatMessage, error)
	CountMessagesSince(ctx context.Context, since time.Time) (int64, error)

	// DeleteByUser removes all sessions and messages of a user.
	DeleteByUser(ctx context.Context, userID string) error
}
