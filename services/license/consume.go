package license

import (
	"context"
	"errors"
	"fmt"

	licenseRepo "lexassist/database/repository/license"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Consume debits hours from the usable license that expires soonest. A debit
// larger than the balance drains that license to zero; it is never split
// across licenses.
func (s *DefaultLicenseService) Consume(ctx context.Context, userID, sessionID string, hours float64) (*ConsumeResult, error) {
	if hours <= 0 {
		return nil, ErrInvalidHours
	}
	now := s.now()
	candidates, err := s.usable(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	for i, l := range candidates {
		after, taken, err := s.Repo.Debit(ctx, l.ID, hours, now)
		if errors.Is(err, licenseRepo.ErrNotUsable) {
			// Drained or expired by a concurrent request; try the next one.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to debit license: %w", err)
		}

		rec := &models.UsageRecord{
			ID:        uuid.New().String(),
			LicenseID: after.ID,
			UserID:    userID,
			SessionID: sessionID,
			Hours:     taken,
			CreatedAt: now,
		}
		if err := s.Repo.InsertUsage(ctx, rec); err != nil {
			utils.GetLogger().Error("Consume: failed to record usage",
				zap.String("licenseId", after.ID), zap.Float64("hours", taken), zap.Error(err))
		}
		utils.LicenseHoursConsumed.Add(taken)

		if after.Status == models.LicenseExhausted {
			s.record(ctx, audit.Actor{}.Entry(audit.ActionLicenseExhausted, audit.TargetLicense, after.ID, map[string]any{
				"userId":    userID,
				"sessionId": sessionID,
			}))
		}

		remaining := after.HoursRemaining
		for _, other := range candidates[i+1:] {
			remaining += other.HoursRemaining
		}
		return &ConsumeResult{
			License:        after,
			HoursCharged:   roundHours(taken),
			HoursRemaining: roundHours(remaining),
		}, nil
	}
	return nil, ErrNoActiveLicense
}
