package user

import (
	"context"
	"fmt"

	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.mustGet(ctx, userID)
}

func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID, name string) (*models.User, error) {
	name = utils.SanitizeText(name, 120)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := s.Repo.UpdateSetDocument(ctx, userID, bson.M{"name": name, "updatedAt": s.now()}); err != nil {
		utils.GetLogger().Error("Failed to update user", zap.String("userId", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.mustGet(ctx, userID)
}

// UpdatePassword changes the password and signs every other device out.
func (s *DefaultUserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword, currentDeviceID string) error {
	existing, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}
	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return err
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost())
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.Repo.UpdateSetDocument(ctx, userID, bson.M{
		"passwordHash": string(newHash),
		"updatedAt":    s.now(),
	}); err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	return s.SignOutOtherDevices(ctx, userID, currentDeviceID)
}

// DeleteUser removes the account and its conversations. Licenses, payments and
// audit entries are kept.
func (s *DefaultUserService) DeleteUser(ctx context.Context, actor audit.Actor, userID string) error {
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if s.Chats != nil {
		if err := s.Chats.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete chat history: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.clearAuthCache(ctx, userID, deviceIDs(u.Devices)...)
	s.record(ctx, actor.Entry(audit.ActionUserDeleted, audit.TargetUser, userID, map[string]any{"email": u.Email}))
	return nil
}
