package user

import (
	"context"
	"fmt"

	"lexassist/models"
	"lexassist/services/audit"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *DefaultUserService) ListUsers(ctx context.Context, filter models.UserListFilter) ([]models.User, int64, error) {
	filter.Page = filter.Page.Normalize()
	users, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

// SetSuspended suspends or reinstates an account. Cached sessions are dropped
// so the next request re-reads the account.
func (s *DefaultUserService) SetSuspended(ctx context.Context, actor audit.Actor, userID string, suspended bool) error {
	if actor.ID == userID {
		return ErrSelfAction
	}
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdateSetDocument(ctx, userID, bson.M{"suspended": suspended, "updatedAt": s.now()}); err != nil {
		return fmt.Errorf("failed to update suspension: %w", err)
	}
	s.clearAuthCache(ctx, userID, deviceIDs(u.Devices)...)

	action := audit.ActionUserReinstated
	if suspended {
		action = audit.ActionUserSuspended
	}
	s.record(ctx, actor.Entry(action, audit.TargetUser, userID, map[string]any{"strikes": u.Strikes}))
	return nil
}

// SetRole switches an account between user and admin. The lawyer role is
// only granted through verification.
func (s *DefaultUserService) SetRole(ctx context.Context, actor audit.Actor, userID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if actor.ID == userID {
		return nil, ErrSelfAction
	}
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	if err := s.Repo.UpdateSetDocument(ctx, userID, bson.M{"role": role, "updatedAt": s.now()}); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	s.clearAuthCache(ctx, userID, deviceIDs(u.Devices)...)
	s.record(ctx, actor.Entry(audit.ActionUserRoleChanged, audit.TargetUser, userID, map[string]any{
		"from": u.Role,
		"to":   role,
	}))
	u.Role = role
	return u, nil
}

// AddStrike records a moderation strike and returns the new count.
func (s *DefaultUserService) AddStrike(ctx context.Context, userID string) (int, error) {
	n, err := s.Repo.IncrementStrikes(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to add strike: %w", err)
	}
	return n, nil
}

// PromoteToLawyer attaches a verified lawyer profile and grants the lawyer
// role. Admin accounts cannot be promoted.
func (s *DefaultUserService) PromoteToLawyer(ctx context.Context, userID string, profile models.LawyerProfile) error {
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		return fmt.Errorf("%w: admin accounts cannot hold a lawyer profile", ErrInvalidRole)
	}
	fields := bson.M{"lawyerProfile": profile, "role": models.RoleLawyer, "updatedAt": s.now()}
	if err := s.Repo.UpdateSetDocument(ctx, userID, fields); err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}
	s.clearAuthCache(ctx, userID, deviceIDs(u.Devices)...)
	return nil
}
