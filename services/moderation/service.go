package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	moderationRepo "lexassist/database/repository/moderation"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/notification"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StrikeLimit is the number of strikes that suspends an account.
const StrikeLimit = 3

const excerptLen = 280

// AccountActions is implemented by the user service.
type AccountActions interface {
	AddStrike(ctx context.Context, userID string) (int, error)
	SetSuspended(ctx context.Context, actor audit.Actor, userID string, suspended bool) error
}

type ModerationService interface {
	Screen(text string) Result
	// Flag queues flagged content for review.
	Flag(ctx context.Context, kind, refID, userID, text string, res Result) (*models.ModerationItem, error)
	Queue(ctx context.Context, status string, page models.Page) ([]models.ModerationItem, int64, error)
	Review(ctx context.Context, actor audit.Actor, id string, review models.ModerationReview) (*models.ModerationItem, error)
}

type DefaultModerationService struct {
	Repo     moderationRepo.ModerationRepository
	Accounts AccountActions
	Audit    audit.AuditService
	Notifier notification.NotificationService
	Now      func() time.Time
}

func (s *DefaultModerationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultModerationService) Screen(text string) Result {
	res := Screen(text)
	if res.Flagged {
		utils.ModerationFlagsTotal.WithLabelValues(res.Severity).Inc()
	}
	return res
}

func (s *DefaultModerationService) Flag(ctx context.Context, kind, refID, userID, text string, res Result) (*models.ModerationItem, error) {
	excerpt := Redact(text)
	if r := []rune(excerpt); len(r) > excerptLen {
		excerpt = string(r[:excerptLen]) + "…"
	}
	item := &models.ModerationItem{
		ID:         uuid.New().String(),
		Kind:       kind,
		RefID:      refID,
		UserID:     userID,
		Excerpt:    excerpt,
		Categories: res.Categories,
		Severity:   res.Severity,
		Status:     models.ModerationPending,
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to queue moderation item: %w", err)
	}
	return item, nil
}

func (s *DefaultModerationService) Queue(ctx context.Context, status string, page models.Page) ([]models.ModerationItem, int64, error) {
	if status == "" {
		status = models.ModerationPending
	}
	return s.Repo.Queue(ctx, status, page.Normalize())
}

// Review closes a pending item. warn adds a strike; suspend adds a strike and
// suspends; reaching StrikeLimit suspends as well.
func (s *DefaultModerationService) Review(ctx context.Context, actor audit.Actor, id string, review models.ModerationReview) (*models.ModerationItem, error) {
	status := models.ModerationActioned
	switch review.Action {
	case models.ModerationActionDismiss:
		status = models.ModerationDismissed
	case models.ModerationActionWarn, models.ModerationActionSuspend:
	default:
		return nil, ErrInvalidAction
	}

	item, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load moderation item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Status != models.ModerationPending {
		return nil, ErrAlreadyReviewed
	}
	// A strike or suspension on the reviewer's own account would be refused
	// after the item was already closed.
	if review.Action != models.ModerationActionDismiss && item.UserID != "" && item.UserID == actor.ID {
		return nil, ErrSelfAction
	}

	note := utils.SanitizeText(review.Note, 500)
	resolved, err := s.Repo.Resolve(ctx, id, status, review.Action, actor.ID, note, s.now())
	if errors.Is(err, moderationRepo.ErrNotPending) {
		return nil, ErrAlreadyReviewed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve moderation item: %w", err)
	}

	meta := map[string]any{"action": review.Action, "userId": item.UserID, "severity": item.Severity}
	if review.Action != models.ModerationActionDismiss && item.UserID != "" {
		strikes, err := s.Accounts.AddStrike(ctx, item.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to record strike: %w", err)
		}
		meta["strikes"] = strikes

		if review.Action == models.ModerationActionSuspend || strikes >= StrikeLimit {
			if err := s.Accounts.SetSuspended(ctx, actor, item.UserID, true); err != nil {
				return nil, fmt.Errorf("failed to suspend user: %w", err)
			}
			meta["suspended"] = true
		} else {
			s.warn(ctx, item.UserID, strikes)
		}
	}

	if s.Audit != nil {
		s.Audit.Record(ctx, actor.Entry(audit.ActionModerationReviewed, audit.TargetModeration, id, meta))
	}
	return resolved, nil
}

func (s *DefaultModerationService) warn(ctx context.Context, userID string, strikes int) {
	if s.Notifier == nil {
		return
	}
	body := fmt.Sprintf("A message you sent broke our acceptable use policy. Strike %d of %d; at %d your account is suspended.",
		strikes, StrikeLimit, StrikeLimit)
	if err := s.Notifier.Notify(ctx, userID, "Content warning", body, map[string]string{
		"type": notification.TypeModerationWarning,
	}); err != nil {
		utils.GetLogger().Warn("Moderation: warning notification failed", zap.String("userId", userID), zap.Error(err))
	}
}
