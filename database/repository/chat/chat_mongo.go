package chatRepo

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

// MongoChatRepo implements ChatRepository using MongoDB.
type MongoChatRepo struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

// NewMongoChatRepo creates a new ChatRepository using MongoDB.
func NewMongoChatRepo(db *mongo.Database) ChatRepository {
	repo := &MongoChatRepo{
		sessions: db.Collection("chat_sessions"),
		messages: db.Collection("chat_messages"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Error("failed to create chat indexes", zap.Error(err))
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoChatRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "lastActivityAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	if _, err := r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) CreateSession(ctx context.Context, s *models.ChatSession) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.sessions.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var s models.ChatSession
	if err := r.sessions.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch chat session %s: %w", id, err)
	}
	return &s, nil
}

func (r *MongoChatRepo) ListSessions(ctx context.Context, userID string, limit int64) ([]models.ChatSession, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastActivityAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.sessions.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.ChatSession{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode chat sessions: %w", err)
	}
	return out, nil
}

func (r *MongoChatRepo) TouchSession(ctx context.Context, id string, at time.Time, messages int, hours float64) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"lastActivityAt": at},
		"$inc": bson.M{"messageCount": messages, "hoursUsed": hours},
	}
	res, err := r.sessions.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update chat session %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("chat session %s not found", id)
	}
	return nil
}

func (r *MongoChatRepo) InsertMessage(ctx context.Context, m *models.ChatMessage) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.messages.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to store chat message: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) ListMessages(ctx context.Context, sessionID string, limit int64) ([]models.ChatMessage, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.messages.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.ChatMessage{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode chat messages: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *MongoChatRepo) CountMessagesSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()
	filter := bson.M{"createdAt": bson.M{"$gte": since}, "role": models.ChatRoleUser}
	n, err := r.messages.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return n, nil
}

func (r *MongoChatRepo) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := newContext(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.messages.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete chat messages for %s: %w", userID, err)
	}
	if _, err := r.sessions.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete chat sessions for %s: %w", userID, err)
	}
	return nil
}
