package verificationRepo

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

// MongoVerificationRepo implements VerificationRepository using MongoDB.
type MongoVerificationRepo struct {
	coll *mongo.Collection
}

func NewMongoVerificationRepo(db *mongo.Database) VerificationRepository {
	repo := &MongoVerificationRepo{coll: db.Collection("verification_requests")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Error("failed to create verification indexes", zap.Error(err))
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// ensureIndexes includes a partial unique index so a user holds at most one pending request.
func (r *MongoVerificationRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("one_pending_per_user").
				SetPartialFilterExpression(bson.M{"status": models.VerificationPending}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoVerificationRepo) Create(ctx context.Context, req *models.VerificationRequest) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrPendingExists
		}
		return fmt.Errorf("failed to create verification request: %w", err)
	}
	return nil
}

func (r *MongoVerificationRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.VerificationRequest, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var req models.VerificationRequest
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch verification request: %w", err)
	}
	return &req, nil
}

func (r *MongoVerificationRepo) GetByID(ctx context.Context, id string) (*models.VerificationRequest, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoVerificationRepo) LatestByUser(ctx context.Context, userID string) (*models.VerificationRequest, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findOne(ctx, bson.M{"userId": userID}, opts)
}

func (r *MongoVerificationRepo) HasPending(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "status": models.VerificationPending})
	if err != nil {
		return false, fmt.Errorf("failed to check pending verification: %w", err)
	}
	return n > 0, nil
}

func (r *MongoVerificationRepo) Queue(ctx context.Context, status string, page models.Page) ([]models.VerificationRequest, int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count verification requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit())
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list verification requests: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.VerificationRequest{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode verification requests: %w", err)
	}
	return out, total, nil
}

func (r *MongoVerificationRepo) Resolve(ctx context.Context, id, status, reviewerID, note string, at time.Time) (*models.VerificationRequest, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.VerificationPending}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"reviewerId": reviewerID,
		"note":       note,
		"reviewedAt": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.VerificationRequest
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("failed to resolve verification request %s: %w", id, err)
	}
	return &req, nil
}

func (r *MongoVerificationRepo) Reopen(ctx context.Context, id, status string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": status}
	update := bson.M{
		"$set":   bson.M{"status": models.VerificationPending},
		"$unset": bson.M{"reviewerId": "", "note": "", "reviewedAt": ""},
	}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to reopen verification request %s: %w", id, err)
	}
	return nil
}

func (r *MongoVerificationRepo) CountPending(ctx context.Context) (int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, bson.M{"status": models.VerificationPending})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending verifications: %w", err)
	}
	return n, nil
}
