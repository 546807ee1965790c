package audit

import (
	"context"
	"time"

	auditRepo "lexassist/database/repository/audit"
	"lexassist/models"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actions recorded in the audit log.
const (
	ActionLicenseGranted      = "license.granted"
	ActionLicenseRevoked      = "license.revoked"
	ActionLicenseExhausted    = "license.exhausted"
	ActionTrialGranted        = "license.trial_granted"
	ActionPaymentSucceeded    = "payment.succeeded"
	ActionUserSuspended       = "user.suspended"
	ActionUserReinstated      = "user.reinstated"
	ActionUserRoleChanged     = "user.role_changed"
	ActionUserDeleted         = "user.deleted"
	ActionModerationReviewed  = "moderation.reviewed"
	ActionFAQReviewed         = "faq.reviewed"
	ActionFAQArchived         = "faq.archived"
	ActionFAQAnswered         = "faq.answered"
	ActionVerificationDecided = "verification.decided"
	ActionVerificationViewed  = "verification.document_viewed"
)

// Target types.
const (
	TargetUser         = "user"
	TargetLicense      = "license"
	TargetPayment      = "payment"
	TargetFAQ          = "faq"
	TargetModeration   = "moderation_item"
	TargetVerification = "verification_request"
)

// ActorSystem identifies entries written by background jobs.
const ActorSystem = "system"

type AuditService interface {
	// Record stores an entry. Failures are logged, never returned.
	Record(ctx context.Context, entry models.AuditEntry)
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int64, error)
}

type DefaultAuditService struct {
	Repo auditRepo.AuditRepository
}

func (s *DefaultAuditService) Record(ctx context.Context, entry models.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.ActorID == "" {
		entry.ActorID = ActorSystem
		entry.ActorRole = ActorSystem
	}
	if err := s.Repo.Insert(ctx, &entry); err != nil {
		utils.GetLogger().Error("Audit: failed to record entry",
			zap.String("action", entry.Action),
			zap.String("targetId", entry.TargetID),
			zap.Error(err))
	}
}

func (s *DefaultAuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int64, error) {
	filter.Page = filter.Page.Normalize()
	return s.Repo.List(ctx, filter)
}

// Actor identifies who performed an action.
type Actor struct {
	ID   string
	Role string
	IP   string
}

// Entry builds an audit entry for actor acting on a target.
func (a Actor) Entry(action, targetType, targetID string, meta map[string]any) models.AuditEntry {
	return models.AuditEntry{
		ActorID:    a.ID,
		ActorRole:  a.Role,
		IP:         a.IP,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   meta,
	}
}
