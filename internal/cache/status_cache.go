// Package cache holds a short-TTL Redis cache for betting status lookups,
// the same role the teacher's price cache plays for the BTC spot price:
// a value that is cheap to recompute but hot enough on the read path to be
// worth shielding the database from.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evetabi/hotornot/internal/domain"
)

const statusTTL = time.Second

// StatusCache caches BettingStatusFor results per post+principal pair.
type StatusCache struct {
	client *redis.Client
}

// NewStatusCache wraps an existing Redis client.
func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client}
}

func statusKey(postID uint64, principalKey string) string {
	return fmt.Sprintf("hotornot:status:%d:%s", postID, principalKey)
}

// Get returns a cached status and true if present and unexpired.
func (c *StatusCache) Get(ctx context.Context, postID uint64, principalKey string) (domain.BettingStatusDetail, bool) {
	val, err := c.client.Get(ctx, statusKey(postID, principalKey)).Result()
	if err != nil {
		return domain.BettingStatusDetail{}, false
	}
	var detail domain.BettingStatusDetail
	if err := json.Unmarshal([]byte(val), &detail); err != nil {
		return domain.BettingStatusDetail{}, false
	}
	return detail, true
}

// Set stores status with the cache's fixed one-second TTL.
func (c *StatusCache) Set(ctx context.Context, postID uint64, principalKey string, status domain.BettingStatusDetail) {
	// Best-effort: a cache write failure must never surface as a request error.
	data, err := json.Marshal(status)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, statusKey(postID, principalKey), data, statusTTL).Err()
}

// InvalidatePost drops every cached status entry for a post. Called after a
// bet is placed or a slot is tabulated, since both change what BettingStatusFor
// would return for at least one principal.
func (c *StatusCache) InvalidatePost(ctx context.Context, postID uint64) {
	pattern := fmt.Sprintf("hotornot:status:%d:*", postID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}
