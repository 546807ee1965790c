package faqRepo

import (
	"context"
	"errors"

	"lexassist/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrStatusChanged is returned when a conditional transition finds the FAQ in another status.
var ErrStatusChanged = errors.New("faq status changed concurrently")

// FAQRepository defines FAQ data access.
type FAQRepository interface {
	Create(ctx context.Context, f *models.FAQ) error
	// GetByID returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*models.FAQ, error)
	// Transition applies set only if the FAQ is currently in one of from, and returns the updated document.
	Transition(ctx context.Context, id string, from []string, set bson.M) (*models.FAQ, error)
	// List filters by status/category/submitter; Query triggers a text search ranked by score.
	List(ctx context.Context, filter models.FAQFilter) ([]models.FAQ, int64, error)
	// ReviewQueue lists drafted then pending FAQs, least confident first, then oldest.
	ReviewQueue(ctx context.Context, page models.Page) ([]models.FAQ, int64, error)
	IncrementViews(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountAnsweredBy(ctx context.Context, userID string) (int64, error)
}
