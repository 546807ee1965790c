package user

import (
	"context"
	"fmt"

	"lexassist/models"
	"lexassist/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Authenticate verifies credentials and issues a fresh token for the device.
// The device's previous token stops working.
func (s *DefaultUserService) Authenticate(ctx context.Context, email, password string, device models.Device) (*AuthResponse, error) {
	userRec, err := s.Repo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if userRec == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userRec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if userRec.Suspended {
		return nil, ErrSuspended
	}

	known := false
	for _, d := range userRec.Devices {
		if d.DeviceID == device.DeviceID {
			known = true
			break
		}
	}
	if !known && len(userRec.Devices) >= MaxDevices {
		return nil, ErrDeviceLimit
	}

	token, err := utils.GenerateToken(userRec.ID, userRec.Email, device.DeviceID, userRec.Role, s.tokenTTL())
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to generate auth token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	device.TokenHash = utils.HashToken(token)
	device.LastLogin = s.now()

	if err := s.Repo.UpsertDevice(ctx, userRec.ID, device); err != nil {
		utils.GetLogger().Error("Authenticate: failed to store device", zap.String("userId", userRec.ID), zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	s.clearAuthCache(ctx, userRec.ID, device.DeviceID)

	return &AuthResponse{
		ID:    userRec.ID,
		Token: token,
		Name:  userRec.Name,
		Email: userRec.Email,
		Role:  userRec.Role,
	}, nil
}
