package licenseRepo

import (
	"context"
	"errors"
	"time"

	"lexassist/models"
)

var (
	// ErrNotUsable is returned by Debit when the license no longer qualifies.
	ErrNotUsable = errors.New("license is not usable")
	// ErrLicenseNotFound is returned when no license matches.
	ErrLicenseNotFound = errors.New("license not found")
	// ErrPaymentAlreadyGranted is returned by Create when a license for the payment exists.
	ErrPaymentAlreadyGranted = errors.New("license already granted for payment")
)

// HoursEpsilon is the balance below which a license counts as drained.
const HoursEpsilon = 1e-6

// LicenseRepository covers licenses, usage records and payments.
type LicenseRepository interface {
	Create(ctx context.Context, l *models.UserLicense) error
	// GetByID returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*models.UserLicense, error)
	// GetByPaymentID returns nil, nil when absent.
	GetByPaymentID(ctx context.Context, paymentID string) (*models.UserLicense, error)
	// ListByUser returns all licenses, soonest expiry first.
	ListByUser(ctx context.Context, userID string) ([]models.UserLicense, error)
	// ListUsable returns active, unexpired licenses with hours left, soonest expiry first, trials first on ties.
	ListUsable(ctx context.Context, userID string, now time.Time) ([]models.UserLicense, error)
	// Debit atomically subtracts hours (floored at zero) from a usable license and
	// returns the updated license and the hours actually taken.
	Debit(ctx context.Context, id string, hours float64, now time.Time) (*models.UserLicense, float64, error)
	// Revoke marks an active license revoked.
	Revoke(ctx context.Context, id, reason string) (*models.UserLicense, error)
	// ExpireDue marks date-expired active licenses expired.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	// ListNoticeCandidates returns active, un-notified licenses expiring before
	// expiringBefore or holding fewer than lowHours.
	ListNoticeCandidates(ctx context.Context, now, expiringBefore time.Time, lowHours float64) ([]models.UserLicense, error)
	// MarkNotified sets notifiedAt once. Reports whether this call set it.
	MarkNotified(ctx context.Context, id string, at time.Time) (bool, error)
	// ClearNotified undoes the MarkNotified made at the given time.
	ClearNotified(ctx context.Context, id string, at time.Time) error
	// CountActive counts usable licenses split by trial and paid.
	CountActive(ctx context.Context, now time.Time) (trial int64, paid int64, err error)

	InsertUsage(ctx context.Context, rec *models.UsageRecord) error
	HoursConsumedSince(ctx context.Context, since time.Time) (float64, error)
	UsageSeries(ctx context.Context, since time.Time) ([]models.UsagePoint, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	// GetPaymentByProviderRef returns nil, nil when absent.
	GetPaymentByProviderRef(ctx context.Context, ref string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id, status, licenseID, errMsg string) error
	RevenueSince(ctx context.Context, since time.Time) (int64, error)
}
