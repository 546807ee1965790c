package moderationRepo

import (
	"context"
	"errors"
	"time"

	"lexassist/models"
)

// ErrNotPending is returned by Resolve when the item was already reviewed.
var ErrNotPending = errors.New("moderation item is not pending")

// ModerationRepository stores flagged content awaiting review.
type ModerationRepository interface {
	Create(ctx context.Context, item *models.ModerationItem) error
	// GetByID returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*models.ModerationItem, error)
	// Queue lists items with the given status (all when empty), most severe first, then oldest.
	Queue(ctx context.Context, status string, page models.Page) ([]models.ModerationItem, int64, error)
	// Resolve closes a pending item and returns it.
	Resolve(ctx context.Context, id, status, action, reviewerID, note string, at time.Time) (*models.ModerationItem, error)
	CountPending(ctx context.Context) (int64, error)
}
