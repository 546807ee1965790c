package analytics

import (
	"context"
	"errors"
	"fmt"

	"lexassist/models"

	"golang.org/x/sync/errgroup"
)

const (
	dashboardSessions = 5
	dashboardFAQs     = 10
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNotLawyer    = errors.New("account is not a verified lawyer")
)

// DashboardSources are the services the per-user dashboards read from.
type DashboardSources struct {
	Users interface {
		GetUserByID(ctx context.Context, userID string) (*models.User, error)
	}
	Licenses interface {
		Status(ctx context.Context, userID string) (*models.LicenseStatus, error)
	}
	Chats interface {
		ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error)
	}
	FAQs interface {
		ListMine(ctx context.Context, userID string) ([]models.FAQ, error)
		ListOpen(ctx context.Context, page models.Page) ([]models.FAQ, int64, error)
		CountAnsweredBy(ctx context.Context, userID string) (int64, error)
	}
	Verification interface {
		Mine(ctx context.Context, userID string) (*models.VerificationRequest, error)
	}
}

func (s *DefaultAnalyticsService) user(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Dashboards.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *DefaultAnalyticsService) UserDashboard(ctx context.Context, userID string) (*models.UserDashboard, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &models.UserDashboard{User: u}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.Dashboards.Licenses.Status(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load license status: %w", err)
		}
		out.License = *st
		return nil
	})
	g.Go(func() error {
		sessions, err := s.Dashboards.Chats.ListSessions(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		if len(sessions) > dashboardSessions {
			sessions = sessions[:dashboardSessions]
		}
		out.RecentSessions = sessions
		return nil
	})
	g.Go(func() error {
		faqs, err := s.Dashboards.FAQs.ListMine(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load faqs: %w", err)
		}
		if len(faqs) > dashboardFAQs {
			faqs = faqs[:dashboardFAQs]
		}
		out.MyFAQs = faqs
		return nil
	})
	g.Go(func() (err error) {
		out.Verification, err = s.Dashboards.Verification.Mine(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DefaultAnalyticsService) LawyerDashboard(ctx context.Context, userID string) (*models.LawyerDashboard, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsLawyer() {
		return nil, ErrNotLawyer
	}
	open, _, err := s.Dashboards.FAQs.ListOpen(ctx, models.Page{Number: 1, Size: dashboardFAQs})
	if err != nil {
		return nil, fmt.Errorf("failed to load open questions: %w", err)
	}
	n, err := s.Dashboards.FAQs.CountAnsweredBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}
	return &models.LawyerDashboard{Profile: u.LawyerProfile, OpenFAQs: open, AnswerCount: n}, nil
}
