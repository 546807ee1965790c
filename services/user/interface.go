package user

import (
	"context"
	"time"

	userRepo "lexassist/database/repository/user"
	"lexassist/models"
	"lexassist/services/audit"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

// MaxDevices is the number of devices an account may be signed in on.
const MaxDevices = 5

type UserService interface {
	// Registration and authentication
	Register(ctx context.Context, req models.UserRegistrationRequest, device models.Device) (*AuthResponse, error)
	Authenticate(ctx context.Context, email, password string, device models.Device) (*AuthResponse, error)

	// User management
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, name string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword, currentDeviceID string) error
	DeleteUser(ctx context.Context, actor audit.Actor, userID string) error
	AddPushToken(ctx context.Context, userID, token string) error

	// Device management
	RevokeToken(ctx context.Context, userID, deviceID string) error
	GetDevices(ctx context.Context, userID string) ([]models.Device, error)
	SignOutOtherDevices(ctx context.Context, userID, currentDeviceID string) error

	// Admin
	ListUsers(ctx context.Context, filter models.UserListFilter) ([]models.User, int64, error)
	SetSuspended(ctx context.Context, actor audit.Actor, userID string, suspended bool) error
	SetRole(ctx context.Context, actor audit.Actor, userID, role string) (*models.User, error)
	AddStrike(ctx context.Context, userID string) (int, error)
	PromoteToLawyer(ctx context.Context, userID string, profile models.LawyerProfile) error
}

// TrialGranter issues the signup trial.
type TrialGranter interface {
	GrantTrial(ctx context.Context, userID string) (*models.UserLicense, error)
}

// ChatPurger removes a user's conversations.
type ChatPurger interface {
	DeleteByUser(ctx context.Context, userID string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Licenses TrialGranter
	Chats    ChatPurger
	Audit    audit.AuditService
	// Cache is the auth cache; nil disables invalidation.
	Cache    *redis.Client
	TokenTTL time.Duration
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
	Now      func() time.Time
}

// AuthResponse contains the user's ID, token, and additional details.
type AuthResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultUserService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return 72 * time.Hour
}

func (s *DefaultUserService) hashCost() int {
	if s.HashCost > 0 {
		return s.HashCost
	}
	return bcrypt.DefaultCost
}

func (s *DefaultUserService) record(ctx context.Context, e models.AuditEntry) {
	if s.Audit != nil {
		s.Audit.Record(ctx, e)
	}
}
