package user

import (
	"context"
	"fmt"

	"lexassist/models"
	"lexassist/utils"

	"go.uber.org/zap"
)

func (s *DefaultUserService) clearAuthCache(ctx context.Context, userID string, deviceIDs ...string) {
	if s.Cache == nil || len(deviceIDs) == 0 {
		return
	}
	keys := make([]string, len(deviceIDs))
	for i, id := range deviceIDs {
		keys[i] = utils.AuthCacheKey(userID, id)
	}
	if err := s.Cache.Del(ctx, keys...).Err(); err != nil {
		utils.GetLogger().Error("Failed to clear auth cache", zap.String("userId", userID), zap.Error(err))
	}
}

func deviceIDs(devices []models.Device) []string {
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.DeviceID)
	}
	return ids
}

func (s *DefaultUserService) mustGet(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *DefaultUserService) GetDevices(ctx context.Context, userID string) ([]models.Device, error) {
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Devices, nil
}

// RevokeToken signs the device out by removing it from the account.
func (s *DefaultUserService) RevokeToken(ctx context.Context, userID, deviceID string) error {
	if err := s.Repo.RemoveDevices(ctx, userID, []string{deviceID}); err != nil {
		utils.GetLogger().Error("Failed to revoke device token", zap.String("userId", userID), zap.Error(err))
		return fmt.Errorf("failed to logout, please try again")
	}
	s.clearAuthCache(ctx, userID, deviceID)
	return nil
}

func (s *DefaultUserService) SignOutOtherDevices(ctx context.Context, userID, currentDeviceID string) error {
	u, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	var others []string
	for _, d := range u.Devices {
		if d.DeviceID != currentDeviceID {
			others = append(others, d.DeviceID)
		}
	}
	if len(others) == 0 {
		return nil
	}
	if err := s.Repo.RemoveDevices(ctx, userID, others); err != nil {
		return fmt.Errorf("failed to update user devices: %w", err)
	}
	s.clearAuthCache(ctx, userID, others...)
	return nil
}

func (s *DefaultUserService) AddPushToken(ctx context.Context, userID, token string) error {
	if token == "" || len(token) > 4096 {
		return ErrInvalidPushToken
	}
	if err := s.Repo.AddPushToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to store push token: %w", err)
	}
	return nil
}
