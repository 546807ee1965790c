package chat

import (
	"context"
	"errors"
	"time"

	chatRepo "lexassist/database/repository/chat"
	"lexassist/models"
	ai "lexassist/services/intelligence"
	"lexassist/services/license"
	"lexassist/services/moderation"
)

const (
	// MaxMessageLength is in runes, after sanitizing.
	MaxMessageLength = 4000
	// HistoryTurns is the number of past turns sent with each prompt.
	HistoryTurns = 10

	DefaultMinCharge = 60 * time.Second
	DefaultIdleCap   = 300 * time.Second
)

// SafetyReply answers high-severity messages instead of the model.
const SafetyReply = "I can't help with this request. If you or someone else is in immediate danger, " +
	"please contact local emergency services now. If you are thinking about harming yourself, " +
	"a crisis line in your country can talk with you right away. " +
	"For a legal matter involving a threat or a crime, a licensed lawyer or the police can advise you."

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrMessageTooLong  = errors.New("message exceeds 4000 characters")
	ErrLLMUnavailable  = errors.New("assistant is unavailable, you were not charged")
)

// Licenses is the part of licensing chat depends on.
type Licenses interface {
	HasUsableLicense(ctx context.Context, userID string) (bool, error)
	Consume(ctx context.Context, userID, sessionID string, hours float64) (*license.ConsumeResult, error)
	Status(ctx context.Context, userID string) (*models.LicenseStatus, error)
}

// Moderator screens and queues messages.
type Moderator interface {
	Screen(text string) moderation.Result
	Flag(ctx context.Context, kind, refID, userID, text string, res moderation.Result) (*models.ModerationItem, error)
}

type ChatService interface {
	CreateSession(ctx context.Context, userID, title string) (*models.ChatSession, error)
	ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error)
	GetMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, userID, sessionID, text string) (*models.ChatReply, error)
}

type DefaultChatService struct {
	Repo       chatRepo.ChatRepository
	Licenses   Licenses
	Moderation Moderator
	LLM        ai.LLM
	Context    ai.ContextStore
	MinCharge  time.Duration
	IdleCap    time.Duration
	Now        func() time.Time
}

func (s *DefaultChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
