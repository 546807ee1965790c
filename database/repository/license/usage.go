package licenseRepo

import (
	"context"
	"fmt"
	"time"

	"lexassist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoLicenseRepo) InsertUsage(ctx context.Context, rec *models.UsageRecord) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if _, err := r.usage.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

func (r *MongoLicenseRepo) HoursConsumedSince(ctx context.Context, since time.Time) (float64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "hours": bson.M{"$sum": "$hours"}}}},
	}
	cursor, err := r.usage.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum usage: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Hours float64 `bson:"hours"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode usage sum: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Hours, nil
}

// UsageSeries buckets consumed hours by UTC day.
func (r *MongoLicenseRepo) UsageSeries(ctx context.Context, since time.Time) ([]models.UsagePoint, error) {
	ctx, cancel := newContext(ctx, 15*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"hours": bson.M{"$sum": "$hours"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := r.usage.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage series: %w", err)
	}
	defer cursor.Close(ctx)

	points := []models.UsagePoint{}
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode usage series: %w", err)
	}
	return points, nil
}
