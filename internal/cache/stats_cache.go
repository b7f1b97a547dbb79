package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StatsCache handles Redis ZSET operations for cumulative speaking time
type StatsCache interface {
	AddSpeakingTime(ctx context.Context, committeeID, countryID string, seconds int) error
	GetSpeakingTime(ctx context.Context, committeeID, countryID string) (int, error)
	GetTopSpeakers(ctx context.Context, committeeID string, limit int) ([]SpeakerEntry, error)
	Reset(ctx context.Context, committeeID string) error
}

// SpeakerEntry is a single ranked speaking-time entry
type SpeakerEntry struct {
	CountryID string `json:"countryId"`
	Seconds   int    `json:"seconds"`
	Rank      int    `json:"rank"`
}

type statsCache struct {
	client *redis.Client
}

func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{client: client}
}

func (c *statsCache) key(committeeID string) string {
	return fmt.Sprintf("committee:%s:speaking", committeeID)
}

func (c *statsCache) AddSpeakingTime(ctx context.Context, committeeID, countryID string, seconds int) error {
	return c.client.ZIncrBy(ctx, c.key(committeeID), float64(seconds), countryID).Err()
}

func (c *statsCache) GetSpeakingTime(ctx context.Context, committeeID, countryID string) (int, error) {
	score, err := c.client.ZScore(ctx, c.key(committeeID), countryID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	return int(score), err
}

func (c *statsCache) GetTopSpeakers(ctx context.Context, committeeID string, limit int) ([]SpeakerEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(committeeID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]SpeakerEntry, len(results))
	for i, z := range results {
		entries[i] = SpeakerEntry{
			CountryID: z.Member.(string),
			Seconds:   int(z.Score),
			Rank:      i + 1,
		}
	}
	return entries, nil
}

func (c *statsCache) Reset(ctx context.Context, committeeID string) error {
	return c.client.Del(ctx, c.key(committeeID)).Err()
}
