package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// SummaryCache stores generated summaries per document so repeated requests skip the model.
type SummaryCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redisv9.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// Get decodes the cached summary into dest and reports whether it was present.
func (c *SummaryCache) Get(ctx context.Context, documentID uint, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.summaryKey(documentID)).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get summary failed: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("unmarshal cached summary failed: %w", err)
	}
	return true, nil
}

func (c *SummaryCache) Set(ctx context.Context, documentID uint, summary any) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.summaryKey(documentID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set summary failed: %w", err)
	}
	return nil
}

func (c *SummaryCache) Delete(ctx context.Context, documentID uint) error {
	if err := c.client.Del(ctx, c.summaryKey(documentID)).Err(); err != nil {
		return fmt.Errorf("redis delete summary failed: %w", err)
	}
	return nil
}

func (c *SummaryCache) summaryKey(documentID uint) string {
	return fmt.Sprintf("studymate:summary:%d", documentID)
}
