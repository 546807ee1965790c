package userRepo

import (
	"context"
	"errors"
	"time"

	"lexassist/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrUserNotFound is returned by updates that match no user.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address. Returns nil, nil when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// UpdateSetDocument applies a $set with the given fields.
	UpdateSetDocument(ctx context.Context, id string, fields bson.M) error
	// Delete removes a user record by its ID.
	Delete(ctx context.Context, id string) error

	// MarkTrialUsed flips trialUsed from false to true. Reports whether this call flipped it.
	MarkTrialUsed(ctx context.Context, id string) (bool, error)
	// IncrementStrikes adds one strike and returns the new count.
	IncrementStrikes(ctx context.Context, id string) (int, error)

	// UpsertDevice replaces (or appends) the device with the same DeviceID.
	UpsertDevice(ctx context.Context, id string, device models.Device) error
	// RemoveDevices pulls the given device IDs.
	RemoveDevices(ctx context.Context, id string, deviceIDs []string) error
	// AddPushToken stores an FCM registration token.
	AddPushToken(ctx context.Context, id, token string) error
	// RemovePushTokens pulls tokens (used when FCM reports them unregistered).
	RemovePushTokens(ctx context.Context, id string, tokens []string) error

	// List returns a page of users and the total count for the filter.
	List(ctx context.Context, filter models.UserListFilter) ([]models.User, int64, error)
	// CountByRole returns user counts keyed by role.
	CountByRole(ctx context.Context) (map[string]int64, error)
	// CountCreatedSince counts users created at or after since.
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	// CountSuspended counts suspended users.
	CountSuspended(ctx context.Context) (int64, error)
}
