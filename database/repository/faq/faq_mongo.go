package faqRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoFAQRepo implements FAQRepository using MongoDB.
type MongoFAQRepo struct {
	coll *mongo.Collection
}

// NewMongoFAQRepo creates a new FAQRepository using MongoDB.
func NewMongoFAQRepo(db *mongo.Database) FAQRepository {
	repo := &MongoFAQRepo{coll: db.Collection("faqs")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Error("failed to create faq indexes", zap.Error(err))
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// ensureIndexes creates the id, status and full-text indexes.
func (r *MongoFAQRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "confidence", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "submittedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "question", Value: "text"},
				{Key: "answer", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("faq_text").
				SetWeights(bson.M{"question": 5, "tags": 3, "answer": 1}),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
