package license

import (
	"context"
	"time"

	licenseRepo "lexassist/database/repository/license"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/notification"
	"lexassist/services/payment"
	"lexassist/services/tasks"

	"go.mongodb.org/mongo-driver/bson"
)

// UserStore is the part of the user repository licensing needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	MarkTrialUsed(ctx context.Context, id string) (bool, error)
	UpdateSetDocument(ctx context.Context, id string, fields bson.M) error
}

// ConsumeResult describes one debit.
type ConsumeResult struct {
	License        *models.UserLicense `json:"license"`
	HoursCharged   float64             `json:"hoursCharged"`
	HoursRemaining float64             `json:"hoursRemaining"`
}

// GrantRequest is an admin grant. Zero Hours/Days fall back to the plan.
type GrantRequest struct {
	UserID string  `json:"userId" binding:"required"`
	PlanID string  `json:"planId" binding:"required,licenseplan"`
	Hours  float64 `json:"hours" binding:"gte=0,lte=1000"`
	Days   int     `json:"days" binding:"gte=0,lte=3650"`
}

// SweepResult reports what a sweep changed.
type SweepResult struct {
	Expired  int64 `json:"expired"`
	Notified int   `json:"notified"`
}

type LicenseService interface {
	Plans() []models.Plan
	GrantTrial(ctx context.Context, userID string) (*models.UserLicense, error)
	Status(ctx context.Context, userID string) (*models.LicenseStatus, error)
	HasUsableLicense(ctx context.Context, userID string) (bool, error)
	Consume(ctx context.Context, userID, sessionID string, hours float64) (*ConsumeResult, error)
	Renew(ctx context.Context, userID, licenseID string) (*models.CheckoutSession, error)

	CreateCheckout(ctx context.Context, userID, planID string) (*models.CheckoutSession, error)
	ConfirmPayment(ctx context.Context, userID, paymentIntentID string) (*models.UserLicense, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	Grant(ctx context.Context, actor audit.Actor, req GrantRequest) (*models.UserLicense, error)
	Revoke(ctx context.Context, actor audit.Actor, licenseID, reason string) (*models.UserLicense, error)
	ListForUser(ctx context.Context, userID string) ([]models.UserLicense, error)

	Sweep(ctx context.Context, now time.Time) (*SweepResult, error)
	SendNotice(ctx context.Context, p models.LicenseNoticePayload) error
}

// DefaultLicenseService is the production implementation.
type DefaultLicenseService struct {
	Repo     licenseRepo.LicenseRepository
	Users    UserStore
	Payments payment.Gateway
	Audit    audit.AuditService
	Notifier notification.NotificationService
	Queue    tasks.Enqueuer
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultLicenseService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultLicenseService) record(ctx context.Context, e models.AuditEntry) {
	if s.Audit != nil {
		s.Audit.Record(ctx, e)
	}
}

func (s *DefaultLicenseService) Plans() []models.Plan {
	return PurchasablePlans()
}
