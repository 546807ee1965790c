// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"time"

	"lexassist/models"

	"github.com/go-redis/redis/v8"
)

const aiContextPrefix = "ai:ctx:"

// DefaultContextTTL is how long an idle session's context is kept.
const DefaultContextTTL = 30 * time.Minute

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, sessionID string) (*models.AIContext, bool, error) {
	data, err := s.client.Get(ctx, aiContextPrefix+sessionID).Result()
	if err == redis.Nil {
		return &models.AIContext{SessionID: sessionID}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var aiCtx models.AIContext
	if err := json.Unmarshal([]byte(data), &aiCtx); err != nil {
		return nil, false, err
	}
	return &aiCtx, true, nil
}

func (s *RedisContextStore) Set(ctx context.Context, sessionID string, aiCtx *models.AIContext) error {
	aiCtx.SessionID = sessionID
	b, err := json.Marshal(aiCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, aiContextPrefix+sessionID, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, aiContextPrefix+sessionID).Err()
}
