package license

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"lexassist/models"
)

// IsUsable reports whether a license can be debited at now: active, not past
// its expiry date and holding hours.
func IsUsable(l models.UserLicense, now time.Time) bool {
	return l.Status == models.LicenseActive && now.Before(l.ExpiresAt) && l.HoursRemaining > 0
}

// orderForDebit puts the license to debit first: soonest expiry, trial before
// paid on a tie, then oldest grant.
func orderForDebit(ls []models.UserLicense) {
	sort.SliceStable(ls, func(i, j int) bool {
		a, b := ls[i], ls[j]
		if !a.ExpiresAt.Equal(b.ExpiresAt) {
			return a.ExpiresAt.Before(b.ExpiresAt)
		}
		if a.IsTrial != b.IsTrial {
			return a.IsTrial
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (s *DefaultLicenseService) usable(ctx context.Context, userID string, now time.Time) ([]models.UserLicense, error) {
	ls, err := s.Repo.ListUsable(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load licenses: %w", err)
	}
	out := ls[:0]
	for _, l := range ls {
		if IsUsable(l, now) {
			out = append(out, l)
		}
	}
	orderForDebit(out)
	return out, nil
}

func (s *DefaultLicenseService) Status(ctx context.Context, userID string) (*models.LicenseStatus, error) {
	now := s.now()
	all, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load licenses: %w", err)
	}

	st := &models.LicenseStatus{Licenses: []models.UserLicense{}}
	for _, l := range all {
		if l.IsTrial {
			st.TrialUsed = true
		}
		// Reflect date expiry before the sweep has run.
		if l.Status == models.LicenseActive && !now.Before(l.ExpiresAt) {
			l.Status = models.LicenseExpired
		}
		st.Licenses = append(st.Licenses, l)
		if !IsUsable(l, now) {
			continue
		}
		st.HasAccess = true
		st.HoursRemaining += l.HoursRemaining
		if st.NextExpiry == nil || l.ExpiresAt.Before(*st.NextExpiry) {
			exp := l.ExpiresAt
			st.NextExpiry = &exp
		}
	}
	st.HoursRemaining = roundHours(st.HoursRemaining)
	return st, nil
}

func (s *DefaultLicenseService) HasUsableLicense(ctx context.Context, userID string) (bool, error) {
	ls, err := s.usable(ctx, userID, s.now())
	if err != nil {
		return false, err
	}
	return len(ls) > 0, nil
}

func (s *DefaultLicenseService) ListForUser(ctx context.Context, userID string) ([]models.UserLicense, error) {
	ls, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load licenses: %w", err)
	}
	return ls, nil
}

// roundHours trims float noise to 1/10000 h.
func roundHours(h float64) float64 {
	return math.Round(h*10000) / 10000
}
