package chat

import (
	"context"
	"fmt"
	"time"

	"lexassist/models"
	ai "lexassist/services/intelligence"
	"lexassist/services/license"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Charge converts the time since the session's last activity into hours,
// clamped to [minCharge, idleCap].
func Charge(lastActivity, now time.Time, minCharge, idleCap time.Duration) float64 {
	elapsed := now.Sub(lastActivity)
	if elapsed < minCharge {
		elapsed = minCharge
	}
	if elapsed > idleCap {
		elapsed = idleCap
	}
	return elapsed.Hours()
}

func (s *DefaultChatService) charge(sess *models.ChatSession, now time.Time) float64 {
	minCharge, idleCap := s.MinCharge, s.IdleCap
	if minCharge <= 0 {
		minCharge = DefaultMinCharge
	}
	if idleCap < minCharge {
		idleCap = max(DefaultIdleCap, minCharge)
	}
	return Charge(sess.LastActivityAt, now, minCharge, idleCap)
}

// SendMessage runs one exchange. The license is checked before the model is
// called, and nothing is charged unless a reply was produced.
func (s *DefaultChatService) SendMessage(ctx context.Context, userID, sessionID, text string) (*models.ChatReply, error) {
	text = utils.SanitizeMultiline(text, 0)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len([]rune(text)) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	ok, err := s.Licenses.HasUsableLicense(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check license: %w", err)
	}
	if !ok {
		return nil, license.ErrNoActiveLicense
	}

	screen := s.Moderation.Screen(text)
	now := s.now()
	userMsg := models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      models.ChatRoleUser,
		Content:   text,
		Flagged:   screen.Flagged,
		CreatedAt: now,
	}
	if err := s.Repo.InsertMessage(ctx, &userMsg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	utils.ChatMessagesTotal.Inc()
	if screen.Flagged {
		if _, err := s.Moderation.Flag(ctx, models.ModerationKindChat, userMsg.ID, userID, text, screen); err != nil {
			utils.GetLogger().Error("SendMessage: failed to queue flagged message",
				zap.String("messageId", userMsg.ID), zap.Error(err))
		}
	}

	if screen.Blocking() {
		return s.safetyReply(ctx, sess, userMsg)
	}

	history := s.history(ctx, sessionID, userMsg.ID)
	replyText, err := s.LLM.Generate(ctx, ai.Prompt{
		System:  ai.ChatSystemPrompt(),
		History: history.Turns,
		Message: text,
	})
	if err != nil {
		utils.LLMRequestsTotal.WithLabelValues(utils.LLMOutcomeError).Inc()
		utils.GetLogger().Error("SendMessage: model call failed", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	utils.LLMRequestsTotal.WithLabelValues(utils.LLMOutcomeOK).Inc()

	done := s.now()
	debit, err := s.Licenses.Consume(ctx, userID, sessionID, s.charge(sess, done))
	if err != nil {
		return nil, err
	}

	reply := models.ChatMessage{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		UserID:       userID,
		Role:         models.ChatRoleAssistant,
		Content:      replyText,
		HoursCharged: debit.HoursCharged,
		CreatedAt:    done,
	}
	if err := s.Repo.InsertMessage(ctx, &reply); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}
	if err := s.Repo.TouchSession(ctx, sessionID, done, 2, debit.HoursCharged); err != nil {
		utils.GetLogger().Error("SendMessage: failed to update session", zap.String("sessionId", sessionID), zap.Error(err))
	}

	history.Turns = append(history.Turns,
		models.AITurn{Role: models.ChatRoleUser, Content: text},
		models.AITurn{Role: models.ChatRoleAssistant, Content: replyText},
	)
	history.Trim(HistoryTurns)
	if err := s.Context.Set(ctx, sessionID, history); err != nil {
		utils.GetLogger().Warn("SendMessage: failed to cache context", zap.String("sessionId", sessionID), zap.Error(err))
	}

	return &models.ChatReply{
		Message:        userMsg,
		Reply:          reply,
		HoursCharged:   debit.HoursCharged,
		HoursRemaining: debit.HoursRemaining,
		Flagged:        userMsg.Flagged,
	}, nil
}

func (s *DefaultChatService) safetyReply(ctx context.Context, sess *models.ChatSession, userMsg models.ChatMessage) (*models.ChatReply, error) {
	utils.LLMRequestsTotal.WithLabelValues(utils.LLMOutcomeSkipped).Inc()
	now := s.now()
	reply := models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Role:      models.ChatRoleSystem,
		Content:   SafetyReply,
		CreatedAt: now,
	}
	if err := s.Repo.InsertMessage(ctx, &reply); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}
	if err := s.Repo.TouchSession(ctx, sess.ID, now, 2, 0); err != nil {
		utils.GetLogger().Error("SendMessage: failed to update session", zap.String("sessionId", sess.ID), zap.Error(err))
	}

	var remaining float64
	if st, err := s.Licenses.Status(ctx, sess.UserID); err == nil {
		remaining = st.HoursRemaining
	}
	return &models.ChatReply{
		Message:        userMsg,
		Reply:          reply,
		HoursRemaining: remaining,
		Flagged:        true,
	}, nil
}

// history returns the cached context, rebuilding it from stored messages when
// the cache has expired. Safety replies are left out.
func (s *DefaultChatService) history(ctx context.Context, sessionID, skipID string) *models.AIContext {
	cached, found, err := s.Context.Get(ctx, sessionID)
	if err != nil {
		utils.GetLogger().Warn("SendMessage: context store unavailable", zap.String("sessionId", sessionID), zap.Error(err))
	}
	if found && cached != nil {
		return cached
	}

	aiCtx := &models.AIContext{SessionID: sessionID}
	msgs, err := s.Repo.ListMessages(ctx, sessionID, HistoryTurns*2)
	if err != nil {
		utils.GetLogger().Warn("SendMessage: failed to load history", zap.String("sessionId", sessionID), zap.Error(err))
		return aiCtx
	}
	for _, m := range msgs {
		if m.ID == skipID || m.Role == models.ChatRoleSystem {
			continue
		}
		aiCtx.Turns = append(aiCtx.Turns, models.AITurn{Role: m.Role, Content: m.Content})
	}
	aiCtx.Trim(HistoryTurns)
	return aiCtx
}
