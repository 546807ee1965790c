package faqRepo

import (
	"context"
	"fmt"
	"time"

	"lexassist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoFAQRepo) Create(ctx context.Context, f *models.FAQ) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("failed to create faq: %w", err)
	}
	return nil
}

func (r *MongoFAQRepo) GetByID(ctx context.Context, id string) (*models.FAQ, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var f models.FAQ
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&f); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch faq %s: %w", id, err)
	}
	return &f, nil
}

func (r *MongoFAQRepo) Transition(ctx context.Context, id string, from []string, set bson.M) (*models.FAQ, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	fields := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f models.FAQ
	if err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&f); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update faq %s: %w", id, err)
	}
	return &f, nil
}

func (r *MongoFAQRepo) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"views": 1}}); err != nil {
		return fmt.Errorf("failed to increment views for faq %s: %w", id, err)
	}
	return nil
}
