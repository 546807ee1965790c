package licenseRepo

import (
	"context"
	"fmt"
	"math"
	"time"

	"lexassist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoLicenseRepo) Create(ctx context.Context, l *models.UserLicense) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	if _, err := r.licenses.InsertOne(ctx, l); err != nil {
		if mongo.IsDuplicateKeyError(err) && l.PaymentID != "" {
			return ErrPaymentAlreadyGranted
		}
		return fmt.Errorf("failed to create license: %w", err)
	}
	return nil
}

func (r *MongoLicenseRepo) findOne(ctx context.Context, filter bson.M) (*models.UserLicense, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var l models.UserLicense
	if err := r.licenses.FindOne(ctx, filter).Decode(&l); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch license: %w", err)
	}
	return &l, nil
}

func (r *MongoLicenseRepo) GetByID(ctx context.Context, id string) (*models.UserLicense, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoLicenseRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.UserLicense, error) {
	return r.findOne(ctx, bson.M{"paymentId": paymentID})
}

func (r *MongoLicenseRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.UserLicense, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.licenses.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query licenses: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.UserLicense{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode licenses: %w", err)
	}
	return out, nil
}

func (r *MongoLicenseRepo) ListByUser(ctx context.Context, userID string) ([]models.UserLicense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}})
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

func usableFilter(now time.Time) bson.M {
	return bson.M{
		"status":         models.LicenseActive,
		"expiresAt":      bson.M{"$gt": now},
		"hoursRemaining": bson.M{"$gt": 0},
	}
}

func (r *MongoLicenseRepo) ListUsable(ctx context.Context, userID string, now time.Time) ([]models.UserLicense, error) {
	filter := usableFilter(now)
	filter["userId"] = userID
	opts := options.Find().SetSort(bson.D{
		{Key: "expiresAt", Value: 1},
		{Key: "isTrial", Value: -1},
		{Key: "createdAt", Value: 1},
	})
	return r.find(ctx, filter, opts)
}

func debitFilter(id string, now time.Time) bson.M {
	filter := usableFilter(now)
	filter["id"] = id
	return filter
}

// debitPipeline subtracts hours floored at zero, then snaps balances within
// HoursEpsilon to zero and marks them exhausted.
func debitPipeline(hours float64, now time.Time) mongo.Pipeline {
	drained := bson.M{"$lte": bson.A{"$hoursRemaining", HoursEpsilon}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"hoursRemaining": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$hoursRemaining", hours}}}},
			"updatedAt":      now,
		}}},
		{{Key: "$set", Value: bson.M{
			"hoursRemaining": bson.M{"$cond": bson.A{drained, 0, "$hoursRemaining"}},
			"status":         bson.M{"$cond": bson.A{drained, models.LicenseExhausted, "$status"}},
		}}},
	}
}

// applyDebit mirrors debitPipeline on the pre-image and reports the hours taken.
func applyDebit(before models.UserLicense, hours float64, now time.Time) (models.UserLicense, float64) {
	taken := math.Min(hours, before.HoursRemaining)
	after := before
	after.HoursRemaining = math.Max(0, before.HoursRemaining-hours)
	after.UpdatedAt = now
	if after.HoursRemaining <= HoursEpsilon {
		after.HoursRemaining = 0
		after.Status = models.LicenseExhausted
	}
	return after, taken
}

// Debit runs a single conditional pipeline update so concurrent debits never
// drive hoursRemaining below zero.
func (r *MongoLicenseRepo) Debit(ctx context.Context, id string, hours float64, now time.Time) (*models.UserLicense, float64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.UserLicense
	if err := r.licenses.FindOneAndUpdate(ctx, debitFilter(id, now), debitPipeline(hours, now), opts).Decode(&before); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, 0, ErrNotUsable
		}
		return nil, 0, fmt.Errorf("failed to debit license %s: %w", id, err)
	}

	after, taken := applyDebit(before, hours, now)
	return &after, taken, nil
}

func (r *MongoLicenseRepo) Revoke(ctx context.Context, id, reason string) (*models.UserLicense, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.LicenseActive}
	update := bson.M{"$set": bson.M{
		"status":       models.LicenseRevoked,
		"revokeReason": reason,
		"updatedAt":    time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var l models.UserLicense
	if err := r.licenses.FindOneAndUpdate(ctx, filter, update, opts).Decode(&l); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to revoke license %s: %w", id, err)
	}
	return &l, nil
}

func (r *MongoLicenseRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := newContext(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{"status": models.LicenseActive, "expiresAt": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{"status": models.LicenseExpired, "updatedAt": now}}
	res, err := r.licenses.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire licenses: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoLicenseRepo) ListNoticeCandidates(ctx context.Context, now, expiringBefore time.Time, lowHours float64) ([]models.UserLicense, error) {
	filter := usableFilter(now)
	filter["notifiedAt"] = bson.M{"$exists": false}
	filter["$or"] = bson.A{
		bson.M{"expiresAt": bson.M{"$lte": expiringBefore}},
		bson.M{"hoursRemaining": bson.M{"$lt": lowHours}},
	}
	return r.find(ctx, filter, options.Find().SetLimit(500))
}

func (r *MongoLicenseRepo) MarkNotified(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "notifiedAt": bson.M{"$exists": false}}
	res, err := r.licenses.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"notifiedAt": at}})
	if err != nil {
		return false, fmt.Errorf("failed to mark license %s notified: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoLicenseRepo) ClearNotified(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "notifiedAt": at}
	if _, err := r.licenses.UpdateOne(ctx, filter, bson.M{"$unset": bson.M{"notifiedAt": ""}}); err != nil {
		return fmt.Errorf("failed to clear notice mark on license %s: %w", id, err)
	}
	return nil
}

func (r *MongoLicenseRepo) CountActive(ctx context.Context, now time.Time) (int64, int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: usableFilter(now)}},
		{{Key: "$group", Value: bson.M{"_id": "$isTrial", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.licenses.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active licenses: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		IsTrial bool  `bson:"_id"`
		Count   int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("failed to decode license counts: %w", err)
	}

	var trial, paid int64
	for _, row := range rows {
		if row.IsTrial {
			trial = row.Count
		} else {
			paid = row.Count
		}
	}
	return trial, paid, nil
}
