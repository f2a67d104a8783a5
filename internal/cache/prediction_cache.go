package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"pettech-backend/internal/vision"
)

// PredictionCache stores classifier outputs keyed by image content hash.
type PredictionCache struct {
	client *redisv9.Client
	ttl    time.Duration
	prefix string
}

var _ vision.ResultCache = (*PredictionCache)(nil)

// NewPredictionCache scopes keys by modelTag so a new model never reads
// results cached for the previous one.
func NewPredictionCache(client *redisv9.Client, ttl time.Duration, modelTag string) *PredictionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PredictionCache{
		client: client,
		ttl:    ttl,
		prefix: "pettech:prediction:" + modelTag + ":",
	}
}

func (c *PredictionCache) Get(ctx context.Context, key string) (vision.Prediction, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redisv9.Nil {
		return vision.Prediction{}, false, nil
	}
	if err != nil {
		return vision.Prediction{}, false, fmt.Errorf("redis get prediction failed: %w", err)
	}

	var p vision.Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return vision.Prediction{}, false, fmt.Errorf("unmarshal cached prediction failed: %w", err)
	}
	return p, true, nil
}

func (c *PredictionCache) Set(ctx context.Context, key string, p vision.Prediction) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction failed: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set prediction failed: %w", err)
	}
	return nil
}
