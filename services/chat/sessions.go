package chat

import (
	"context"
	"fmt"

	"lexassist/models"
	"lexassist/utils"

	"github.com/google/uuid"
)

const (
	defaultTitle    = "New conversation"
	sessionListSize = 50
	messageListSize = 500
)

func (s *DefaultChatService) CreateSession(ctx context.Context, userID, title string) (*models.ChatSession, error) {
	title = utils.SanitizeText(title, 120)
	if title == "" {
		title = defaultTitle
	}
	now := s.now()
	sess := &models.ChatSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          title,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.Repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return sess, nil
}

func (s *DefaultChatService) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	sessions, err := s.Repo.ListSessions(ctx, userID, sessionListSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	return sessions, nil
}

// ownedSession loads a session and hides sessions of other users.
func (s *DefaultChatService) ownedSession(ctx context.Context, userID, sessionID string) (*models.ChatSession, error) {
	sess, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}
	if sess == nil || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *DefaultChatService) GetMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	msgs, err := s.Repo.ListMessages(ctx, sessionID, messageListSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
