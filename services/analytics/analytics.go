package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexassist/models"

	"golang.org/x/sync/errgroup"
)

// DefaultWindow is used when no since is given.
const DefaultWindow = 30 * 24 * time.Hour

// MaxWindow bounds usage series queries.
const MaxWindow = 366 * 24 * time.Hour

var ErrInvalidWindow = errors.New("since must be in the past and within one year")

type UserStats interface {
	CountByRole(ctx context.Context) (map[string]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountSuspended(ctx context.Context) (int64, error)
}

type LicenseStats interface {
	CountActive(ctx context.Context, now time.Time) (trial int64, paid int64, err error)
	HoursConsumedSince(ctx context.Context, since time.Time) (float64, error)
	UsageSeries(ctx context.Context, since time.Time) ([]models.UsagePoint, error)
	RevenueSince(ctx context.Context, since time.Time) (int64, error)
}

type FAQStats interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type ChatStats interface {
	CountMessagesSince(ctx context.Context, since time.Time) (int64, error)
}

// PendingCounter is satisfied by the moderation and verification repositories.
type PendingCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

type AnalyticsService interface {
	Overview(ctx context.Context, since time.Time) (*models.Overview, error)
	UsageSeries(ctx context.Context, since time.Time) ([]models.UsagePoint, error)
	UserDashboard(ctx context.Context, userID string) (*models.UserDashboard, error)
	LawyerDashboard(ctx context.Context, userID string) (*models.LawyerDashboard, error)
}

type DefaultAnalyticsService struct {
	Users         UserStats
	Licenses      LicenseStats
	FAQs          FAQStats
	Chats         ChatStats
	Moderation    PendingCounter
	Verifications PendingCounter
	Dashboards    DashboardSources
	Now           func() time.Time
}

func (s *DefaultAnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// window resolves since against now. A zero since means DefaultWindow.
func (s *DefaultAnalyticsService) window(since time.Time) (time.Time, time.Time, error) {
	now := s.now()
	if since.IsZero() {
		return now.Add(-DefaultWindow), now, nil
	}
	if since.After(now) || now.Sub(since) > MaxWindow {
		return time.Time{}, now, ErrInvalidWindow
	}
	return since, now, nil
}

// Overview gathers the admin dashboard counters concurrently.
func (s *DefaultAnalyticsService) Overview(ctx context.Context, since time.Time) (*models.Overview, error) {
	since, now, err := s.window(since)
	if err != nil {
		return nil, err
	}
	out := &models.Overview{Since: since}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.UsersByRole, err = s.Users.CountByRole(ctx)
		return wrap("users by role", err)
	})
	g.Go(func() (err error) {
		out.NewUsers, err = s.Users.CountCreatedSince(ctx, since)
		return wrap("new users", err)
	})
	g.Go(func() (err error) {
		out.SuspendedUsers, err = s.Users.CountSuspended(ctx)
		return wrap("suspended users", err)
	})
	g.Go(func() error {
		trial, paid, err := s.Licenses.CountActive(ctx, now)
		out.ActiveTrials = trial
		out.ActiveLicenses = trial + paid
		return wrap("active licenses", err)
	})
	g.Go(func() (err error) {
		out.HoursConsumed, err = s.Licenses.HoursConsumedSince(ctx, since)
		return wrap("hours consumed", err)
	})
	g.Go(func() (err error) {
		out.RevenueCents, err = s.Licenses.RevenueSince(ctx, since)
		return wrap("revenue", err)
	})
	g.Go(func() (err error) {
		out.FAQsByStatus, err = s.FAQs.CountByStatus(ctx)
		return wrap("faqs by status", err)
	})
	g.Go(func() (err error) {
		out.PendingModeration, err = s.Moderation.CountPending(ctx)
		return wrap("pending moderation", err)
	})
	g.Go(func() (err error) {
		out.PendingVerifications, err = s.Verifications.CountPending(ctx)
		return wrap("pending verifications", err)
	})
	g.Go(func() (err error) {
		out.ChatMessages, err = s.Chats.CountMessagesSince(ctx, since)
		return wrap("chat messages", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// UsageSeries returns hours consumed per UTC day. Days without usage are
// filled with zero so charts get a continuous axis.
func (s *DefaultAnalyticsService) UsageSeries(ctx context.Context, since time.Time) ([]models.UsagePoint, error) {
	since, now, err := s.window(since)
	if err != nil {
		return nil, err
	}
	points, err := s.Licenses.UsageSeries(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage series: %w", err)
	}
	return fillDays(points, since, now), nil
}

const dayLayout = "2006-01-02"

func fillDays(points []models.UsagePoint, since, now time.Time) []models.UsagePoint {
	byDay := make(map[string]float64, len(points))
	for _, p := range points {
		byDay[p.Day] += p.Hours
	}
	start := since.UTC().Truncate(24 * time.Hour)
	end := now.UTC().Truncate(24 * time.Hour)
	out := make([]models.UsagePoint, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		out = append(out, models.UsagePoint{Day: key, Hours: byDay[key]})
	}
	return out
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", what, err)
	}
	return nil
}
