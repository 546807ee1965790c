package moderationRepo

import (
	"context"
	"fmt"
	"time"

	"lexassist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoModerationRepo implements ModerationRepository using MongoDB.
type MongoModerationRepo struct {
	coll *mongo.Collection
}

func NewMongoModerationRepo(db *mongo.Database) ModerationRepository {
	repo := &MongoModerationRepo{coll: db.Collection("moderation_items")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Error("failed to create moderation indexes", zap.Error(err))
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoModerationRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "severityRank", Value: -1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoModerationRepo) Create(ctx context.Context, item *models.ModerationItem) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	item.SeverityRank = models.SeverityRank(item.Severity)
	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to create moderation item: %w", err)
	}
	return nil
}

func (r *MongoModerationRepo) GetByID(ctx context.Context, id string) (*models.ModerationItem, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var item models.ModerationItem
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch moderation item %s: %w", id, err)
	}
	return &item, nil
}

func (r *MongoModerationRepo) Queue(ctx context.Context, status string, page models.Page) ([]models.ModerationItem, int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count moderation items: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "severityRank", Value: -1}, {Key: "createdAt", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit())
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list moderation items: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.ModerationItem{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode moderation items: %w", err)
	}
	return out, total, nil
}

func (r *MongoModerationRepo) Resolve(ctx context.Context, id, status, action, reviewerID, note string, at time.Time) (*models.ModerationItem, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.ModerationPending}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"action":     action,
		"reviewerId": reviewerID,
		"note":       note,
		"reviewedAt": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.ModerationItem
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("failed to resolve moderation item %s: %w", id, err)
	}
	return &item, nil
}

func (r *MongoModerationRepo) CountPending(ctx context.Context) (int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, bson.M{"status": models.ModerationPending})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending moderation: %w", err)
	}
	return n, nil
}
