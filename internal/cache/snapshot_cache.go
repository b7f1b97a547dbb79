package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"podium/internal/model"

	"github.com/redis/go-redis/v9"
)

const snapshotTTL = 30 * time.Second

// SnapshotCache holds the last full committee projection so that
// reconnecting subscribers can fetch it without hitting Mongo. Every
// mode mutation invalidates it.
type SnapshotCache interface {
	Set(ctx context.Context, committeeID string, snapshot model.Partial) error
	Get(ctx context.Context, committeeID string) (model.Partial, error)
	Invalidate(ctx context.Context, committeeID string) error
}

type snapshotCache struct {
	client *redis.Client
}

func NewSnapshotCache(client *redis.Client) SnapshotCache {
	return &snapshotCache{client: client}
}

func (c *snapshotCache) key(committeeID string) string {
	return fmt.Sprintf("committee:%s:snapshot", committeeID)
}

func (c *snapshotCache) Set(ctx context.Context, committeeID string, snapshot model.Partial) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(committeeID), data, snapshotTTL).Err()
}

func (c *snapshotCache) Get(ctx context.Context, committeeID string) (model.Partial, error) {
	data, err := c.client.Get(ctx, c.key(committeeID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.Partial
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (c *snapshotCache) Invalidate(ctx context.Context, committeeID string) error {
	return c.client.Del(ctx, c.key(committeeID)).Err()
}
