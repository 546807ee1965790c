package faq

import (
	"context"
	"errors"
	"time"

	faqRepo "lexassist/database/repository/faq"
	"lexassist/models"
	"lexassist/services/audit"
	ai "lexassist/services/intelligence"
	"lexassist/services/moderation"
	"lexassist/services/notification"
	"lexassist/services/tasks"
)

const (
	MinQuestionLength = 15
	MaxQuestionLength = 1000
	MaxAnswerLength   = 8000
	DefaultCategory   = "general"
	maxTags           = 10
)

var (
	ErrFAQNotFound       = errors.New("faq not found")
	ErrQuestionLength    = errors.New("question must be between 15 and 1000 characters")
	ErrContentRejected   = errors.New("content rejected by moderation")
	ErrInvalidTransition = errors.New("faq is not in a state that allows this action")
	ErrAnswerRequired    = errors.New("an answer is required")
	ErrNotLawyer         = errors.New("only verified lawyers can answer")
	ErrLLMUnavailable    = errors.New("draft generation failed")
)

// Moderator screens submitted text.
type Moderator interface {
	Screen(text string) moderation.Result
	Flag(ctx context.Context, kind, refID, userID, text string, res moderation.Result) (*models.ModerationItem, error)
}

// UserLookup resolves the answering lawyer.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type FAQService interface {
	Submit(ctx context.Context, userID string, sub models.FAQSubmission) (*models.FAQ, error)
	DraftAnswer(ctx context.Context, faqID string) (*models.FAQ, error)
	LawyerAnswer(ctx context.Context, actor audit.Actor, faqID, answer string) (*models.FAQ, error)
	Review(ctx context.Context, actor audit.Actor, faqID string, review models.FAQReview) (*models.FAQ, error)
	Archive(ctx context.Context, actor audit.Actor, faqID string) (*models.FAQ, error)

	ListPublished(ctx context.Context, query, category string, page models.Page) ([]models.FAQ, int64, error)
	GetPublished(ctx context.Context, faqID string) (*models.FAQ, error)
	ReviewQueue(ctx context.Context, page models.Page) ([]models.FAQ, int64, error)
	// ListOpen lists questions lawyers can still answer.
	ListOpen(ctx context.Context, page models.Page) ([]models.FAQ, int64, error)
	ListMine(ctx context.Context, userID string) ([]models.FAQ, error)
	CountAnsweredBy(ctx context.Context, userID string) (int64, error)
}

type DefaultFAQService struct {
	Repo       faqRepo.FAQRepository
	Users      UserLookup
	LLM        ai.LLM
	Moderation Moderator
	Audit      audit.AuditService
	Notifier   notification.NotificationService
	Queue      tasks.Enqueuer
	AutoDraft  bool
	Now        func() time.Time
}

func (s *DefaultFAQService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultFAQService) record(ctx context.Context, e models.AuditEntry) {
	if s.Audit != nil {
		s.Audit.Record(ctx, e)
	}
}

// transition maps a lost race onto ErrInvalidTransition.
func (s *DefaultFAQService) transition(ctx context.Context, id string, from []string, set map[string]any) (*models.FAQ, error) {
	f, err := s.Repo.Transition(ctx, id, from, set)
	if errors.Is(err, faqRepo.ErrStatusChanged) {
		return nil, ErrInvalidTransition
	}
	return f, err
}

func (s *DefaultFAQService) get(ctx context.Context, id string) (*models.FAQ, error) {
	f, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFAQNotFound
	}
	return f, nil
}
