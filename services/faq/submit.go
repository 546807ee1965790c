package faq

import (
	"context"
	"fmt"
	"strings"

	"lexassist/models"
	"lexassist/services/tasks"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submit stores a new question as pending and queues an AI draft.
func (s *DefaultFAQService) Submit(ctx context.Context, userID string, sub models.FAQSubmission) (*models.FAQ, error) {
	question := utils.SanitizeText(sub.Question, 0)
	if n := len([]rune(question)); n < MinQuestionLength || n > MaxQuestionLength {
		return nil, ErrQuestionLength
	}

	screen := s.Moderation.Screen(question)
	if screen.Blocking() {
		if _, err := s.Moderation.Flag(ctx, models.ModerationKindFAQ, "", userID, question, screen); err != nil {
			utils.GetLogger().Error("Submit: failed to queue rejected question", zap.Error(err))
		}
		return nil, ErrContentRejected
	}

	category := strings.ToLower(utils.SanitizeText(sub.Category, 60))
	if category == "" {
		category = DefaultCategory
	}
	now := s.now()
	f := &models.FAQ{
		ID:           uuid.New().String(),
		Question:     question,
		Category:     category,
		Jurisdiction: utils.SanitizeText(sub.Jurisdiction, 80),
		Status:       models.FAQPending,
		SubmittedBy:  userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to store question: %w", err)
	}

	if screen.Flagged {
		if _, err := s.Moderation.Flag(ctx, models.ModerationKindFAQ, f.ID, userID, question, screen); err != nil {
			utils.GetLogger().Error("Submit: failed to queue flagged question", zap.String("faqId", f.ID), zap.Error(err))
		}
	}

	if s.AutoDraft {
		task, opts, err := tasks.NewFAQDraftTask(f.ID)
		if err == nil {
			err = tasks.Enqueue(ctx, s.Queue, task, opts)
		}
		if err != nil {
			utils.GetLogger().Error("Submit: failed to enqueue draft", zap.String("faqId", f.ID), zap.Error(err))
		}
	}
	return f, nil
}
