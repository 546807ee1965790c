package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	licenseRepo "lexassist/database/repository/license"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newLicense(userID string, plan models.Plan, hours float64, days int, now time.Time) *models.UserLicense {
	return &models.UserLicense{
		ID:             uuid.New().String(),
		UserID:         userID,
		PlanID:         plan.ID,
		IsTrial:        plan.ID == PlanTrial,
		HoursTotal:     hours,
		HoursRemaining: hours,
		StartsAt:       now,
		ExpiresAt:      now.AddDate(0, 0, days),
		Status:         models.LicenseActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// GrantTrial issues the one-time trial. The user's trialUsed flag is flipped
// with a conditional update, so concurrent calls grant at most one trial.
func (s *DefaultLicenseService) GrantTrial(ctx context.Context, userID string) (*models.UserLicense, error) {
	flipped, err := s.Users.MarkTrialUsed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim trial: %w", err)
	}
	if !flipped {
		return nil, ErrTrialAlreadyUsed
	}

	plan := TrialPlan()
	l := newLicense(userID, plan, plan.Hours, plan.DurationDays, s.now())
	if err := s.Repo.Create(ctx, l); err != nil {
		if rerr := s.Users.UpdateSetDocument(ctx, userID, bson.M{"trialUsed": false}); rerr != nil {
			utils.GetLogger().Error("GrantTrial: failed to release trial flag", zap.String("userId", userID), zap.Error(rerr))
		}
		return nil, fmt.Errorf("failed to create trial license: %w", err)
	}

	s.record(ctx, audit.Actor{}.Entry(audit.ActionTrialGranted, audit.TargetLicense, l.ID, map[string]any{
		"userId": userID,
		"hours":  l.HoursTotal,
	}))
	return l, nil
}

// Grant lets an admin issue a paid-plan license, optionally overriding hours and days.
func (s *DefaultLicenseService) Grant(ctx context.Context, actor audit.Actor, req GrantRequest) (*models.UserLicense, error) {
	if req.PlanID == PlanTrial {
		return nil, ErrTrialNotRenewable
	}
	plan, ok := PlanByID(req.PlanID)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if req.Hours < 0 || req.Days < 0 {
		return nil, ErrInvalidHours
	}
	hours, days := plan.Hours, plan.DurationDays
	if req.Hours > 0 {
		hours = req.Hours
	}
	if req.Days > 0 {
		days = req.Days
	}

	u, err := s.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	l := newLicense(u.ID, plan, hours, days, s.now())
	l.GrantedBy = actor.ID
	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	s.record(ctx, actor.Entry(audit.ActionLicenseGranted, audit.TargetLicense, l.ID, map[string]any{
		"userId": u.ID,
		"planId": plan.ID,
		"hours":  hours,
		"days":   days,
	}))
	s.notifyGranted(ctx, l)
	return l, nil
}

func (s *DefaultLicenseService) Revoke(ctx context.Context, actor audit.Actor, licenseID, reason string) (*models.UserLicense, error) {
	existing, err := s.Repo.GetByID(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load license: %w", err)
	}
	if existing == nil {
		return nil, ErrLicenseNotFound
	}
	if existing.Status != models.LicenseActive {
		return nil, ErrLicenseNotActive
	}

	l, err := s.Repo.Revoke(ctx, licenseID, utils.SanitizeText(reason, 500))
	if errors.Is(err, licenseRepo.ErrLicenseNotFound) {
		return nil, ErrLicenseNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to revoke license: %w", err)
	}

	s.record(ctx, actor.Entry(audit.ActionLicenseRevoked, audit.TargetLicense, l.ID, map[string]any{
		"userId":         l.UserID,
		"reason":         l.RevokeReason,
		"hoursRemaining": l.HoursRemaining,
	}))
	return l, nil
}

// Renew never extends a license in place. Trials are refused; for a paid
// license it starts a checkout for the same plan, which yields a new license.
func (s *DefaultLicenseService) Renew(ctx context.Context, userID, licenseID string) (*models.CheckoutSession, error) {
	l, err := s.Repo.GetByID(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load license: %w", err)
	}
	if l == nil || l.UserID != userID {
		return nil, ErrLicenseNotFound
	}
	if l.IsTrial {
		return nil, ErrTrialNotRenewable
	}
	return s.CreateCheckout(ctx, userID, l.PlanID)
}
