package verificationRepo

import (
	"context"
	"errors"
	"time"

	"lexassist/models"
)

var (
	// ErrPendingExists is returned by Create when the user already has a pending request.
	ErrPendingExists = errors.New("pending verification request exists")
	// ErrNotPending is returned by Resolve when the request was already decided.
	ErrNotPending = errors.New("verification request is not pending")
)

// VerificationRepository stores lawyer verification requests.
type VerificationRepository interface {
	Create(ctx context.Context, req *models.VerificationRequest) error
	// GetByID returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*models.VerificationRequest, error)
	// LatestByUser returns the user's most recent request or nil.
	LatestByUser(ctx context.Context, userID string) (*models.VerificationRequest, error)
	// HasPending reports whether the user has a pending request.
	HasPending(ctx context.Context, userID string) (bool, error)
	// Queue lists requests with the given status (all when empty), oldest first.
	Queue(ctx context.Context, status string, page models.Page) ([]models.VerificationRequest, int64, error)
	Resolve(ctx context.Context, id, status, reviewerID, note string, at time.Time) (*models.VerificationRequest, error)
	// Reopen returns a request decided with status back to pending and clears the decision.
	Reopen(ctx context.Context, id, status string) error
	CountPending(ctx context.Context) (int64, error)
}
