package user

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"lexassist/config"
	userRepo "lexassist/database/repository/user"
	"lexassist/models"
	"lexassist/services/content"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates the account, grants the signup trial and signs the
// registering device in.
func (s *DefaultUserService) Register(ctx context.Context, req models.UserRegistrationRequest, device models.Device) (*AuthResponse, error) {
	name := utils.SanitizeText(req.Name, 120)
	if name == "" {
		return nil, ErrInvalidName
	}
	email := utils.NormalizeEmail(req.Email)
	if !req.AcceptedTerms {
		return nil, ErrTermsNotAccepted
	}
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		utils.GetLogger().Error("Register: failed to check for existing user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost())
	if err != nil {
		utils.GetLogger().Error("Register: failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	now := s.now()
	u := models.User{
		ID:              uuid.New().String(),
		Name:            name,
		Email:           email,
		PasswordHash:    string(hashedPassword),
		Role:            models.RoleUser,
		TermsVersion:    content.TermsVersion,
		TermsAcceptedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if slices.Contains(config.AdminEmailList(), email) {
		u.Role = models.RoleAdmin
	}

	token, err := utils.GenerateToken(u.ID, u.Email, device.DeviceID, u.Role, s.tokenTTL())
	if err != nil {
		utils.GetLogger().Error("Register: failed to generate auth token", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	device.TokenHash = utils.HashToken(token)
	device.LastLogin = now
	u.Devices = []models.Device{device}

	if err := s.Repo.Create(ctx, &u); err != nil {
		if errors.Is(err, userRepo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		utils.GetLogger().Error("Register: failed to create user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	// The account stays usable without a trial; plans can still be bought.
	if s.Licenses != nil {
		if _, err := s.Licenses.GrantTrial(ctx, u.ID); err != nil {
			utils.GetLogger().Error("Register: failed to grant trial", zap.String("userId", u.ID), zap.Error(err))
		}
	}

	s.clearAuthCache(ctx, u.ID, device.DeviceID)

	return &AuthResponse{
		ID:    u.ID,
		Token: token,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}, nil
}
