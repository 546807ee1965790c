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

func (r *MongoFAQRepo) page(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.FAQ, int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count faqs: %w", err)
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.FAQ{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode faqs: %w", err)
	}
	return out, total, nil
}

func (r *MongoFAQRepo) List(ctx context.Context, f models.FAQFilter) ([]models.FAQ, int64, error) {
	filter := bson.M{}
	if len(f.Status) > 0 {
		filter["status"] = bson.M{"$in": f.Status}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.SubmittedBy != "" {
		filter["submittedBy"] = f.SubmittedBy
	}

	opts := options.Find().SetSkip(f.Page.Skip()).SetLimit(f.Page.Limit())
	if f.Query != "" {
		filter["$text"] = bson.M{"$search": f.Query}
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		opts.SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}})
	} else {
		opts.SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}})
	}
	return r.page(ctx, filter, opts)
}

// reviewQueueFilter matches everything still waiting on a lawyer.
func reviewQueueFilter() bson.M {
	return bson.M{"status": bson.M{"$in": []string{models.FAQDrafted, models.FAQPending}}}
}

// reviewQueuePipeline puts drafted FAQs ahead of pending ones, then sorts by
// confidence ascending and age.
func reviewQueuePipeline(p models.Page) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: reviewQueueFilter()}},
		{{Key: "$addFields", Value: bson.M{"_queueRank": bson.M{
			"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.FAQDrafted}}, 0, 1},
		}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_queueRank", Value: 1},
			{Key: "confidence", Value: 1},
			{Key: "createdAt", Value: 1},
		}}},
		{{Key: "$skip", Value: p.Skip()}},
		{{Key: "$limit", Value: p.Limit()}},
		{{Key: "$project", Value: bson.M{"_queueRank": 0}}},
	}
}

func (r *MongoFAQRepo) ReviewQueue(ctx context.Context, p models.Page) ([]models.FAQ, int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, reviewQueueFilter())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count review queue: %w", err)
	}
	cursor, err := r.coll.Aggregate(ctx, reviewQueuePipeline(p))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list review queue: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.FAQ{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode review queue: %w", err)
	}
	return out, total, nil
}

func (r *MongoFAQRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate faqs by status: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode faq counts: %w", err)
	}
	out := map[string]int64{}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *MongoFAQRepo) CountAnsweredBy(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"answeredBy": userID, "answerSource": models.AnswerSourceLawyer}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return n, nil
}
