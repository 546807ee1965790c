package license

import (
	"context"
	"fmt"
	"time"

	"lexassist/models"
	"lexassist/services/notification"
	"lexassist/services/tasks"
	"lexassist/utils"

	"go.uber.org/zap"
)

const (
	// NoticeWindow is how far ahead of expiry a license is flagged.
	NoticeWindow = 72 * time.Hour
	// LowHoursThreshold triggers a notice when fewer hours remain.
	LowHoursThreshold = 1.0
)

// Notice reasons.
const (
	ReasonExpiring = "expiring"
	ReasonLowHours = "low_hours"
)

// Sweep expires licenses past their date and queues one notice per license
// that is about to expire or run out of hours.
func (s *DefaultLicenseService) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	expired, err := s.Repo.ExpireDue(ctx, now)
	if err != nil {
		return nil, err
	}
	res := &SweepResult{Expired: expired}

	cands, err := s.Repo.ListNoticeCandidates(ctx, now, now.Add(NoticeWindow), LowHoursThreshold)
	if err != nil {
		return res, err
	}

	for _, l := range cands {
		claimed, err := s.Repo.MarkNotified(ctx, l.ID, now)
		if err != nil {
			utils.GetLogger().Error("Sweep: failed to mark notified", zap.String("licenseId", l.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		reason := ReasonLowHours
		if !l.ExpiresAt.After(now.Add(NoticeWindow)) {
			reason = ReasonExpiring
		}
		task, opts, err := tasks.NewLicenseNoticeTask(models.LicenseNoticePayload{
			LicenseID:      l.ID,
			UserID:         l.UserID,
			Reason:         reason,
			HoursRemaining: l.HoursRemaining,
			ExpiresAt:      l.ExpiresAt,
		})
		if err == nil {
			err = tasks.Enqueue(ctx, s.Queue, task, opts)
		}
		if err != nil {
			utils.GetLogger().Error("Sweep: failed to enqueue notice", zap.String("licenseId", l.ID), zap.Error(err))
			// Release the claim so the next sweep tries again.
			if cerr := s.Repo.ClearNotified(ctx, l.ID, now); cerr != nil {
				utils.GetLogger().Error("Sweep: failed to clear notice mark", zap.String("licenseId", l.ID), zap.Error(cerr))
			}
			continue
		}
		res.Notified++
	}

	if res.Expired > 0 || res.Notified > 0 {
		utils.GetLogger().Info("License sweep", zap.Int64("expired", res.Expired), zap.Int("notified", res.Notified))
	}
	return res, nil
}

// SendNotice delivers a license:notify task.
func (s *DefaultLicenseService) SendNotice(ctx context.Context, p models.LicenseNoticePayload) error {
	if s.Notifier == nil {
		return nil
	}
	var title, body string
	switch p.Reason {
	case ReasonExpiring:
		title = "Your LexAssist license expires soon"
		body = fmt.Sprintf("%.1f hours remain and expire on %s.", p.HoursRemaining, p.ExpiresAt.Format("Jan 2, 2006"))
	default:
		title = "You are running low on LexAssist hours"
		body = fmt.Sprintf("Only %.0f minutes of assistant time remain.", p.HoursRemaining*60)
	}
	return s.Notifier.Notify(ctx, p.UserID, title, body, map[string]string{
		"type":      notification.TypeLicenseNotice,
		"licenseId": p.LicenseID,
		"reason":    p.Reason,
	})
}
