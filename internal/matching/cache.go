// internal/matching/cache.go

package matching

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// MatchCache stores ranked responses. Failures are never fatal to a request.
type MatchCache interface {
	Get(ctx context.Context, key string) (*MatchingResponse, bool)
	Set(ctx context.Context, key string, resp *MatchingResponse)
	InvalidateUser(ctx context.Context, userID int64)
}

// RedisMatchCache keeps responses in Redis with a fixed TTL
type RedisMatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMatchCache creates a Redis-backed cache
func NewRedisMatchCache(client *redis.Client, ttl time.Duration) *RedisMatchCache {
	return &RedisMatchCache{client: client, ttl: ttl}
}

func (c *RedisMatchCache) Get(ctx context.Context, key string) (*MatchingResponse, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis GET error for key %s: %v", key, err)
		}
		cacheMisses.Inc()
		return nil, false
	}

	var resp MatchingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Printf("Failed to decode cached matches for key %s: %v", key, err)
		cacheMisses.Inc()
		return nil, false
	}

	cacheHits.Inc()
	return &resp, true
}

func (c *RedisMatchCache) Set(ctx context.Context, key string, resp *MatchingResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to encode matches for cache: %v", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("Redis SET error for key %s: %v", key, err)
	}
}

// InvalidateUser drops every cached response for a user
func (c *RedisMatchCache) InvalidateUser(ctx context.Context, userID int64) {
	pattern := userCachePrefix(userID) + "*"
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", pattern, err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				log.Printf("Error deleting cached matches %v: %v", keys, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// noopCache is used when caching is disabled
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*MatchingResponse, bool) { return nil, false }
func (noopCache) Set(context.Context, string, *MatchingResponse) {}
func (noopCache) InvalidateUser(context.Context, int64) {}

func userCachePrefix(userID int64) string {
	return fmt.Sprintf("matching:%d:", userID)
}

// matchCacheKey derives a stable key from the user, their current preferences
// and the effective options. Edited preferences produce a new key.
func matchCacheKey(userID int64, prefs *Preferences, weights CategoryWeights, opts *MatchOptions, limit int, includePartial bool) string {
	parts := []string{
		"prefs=" + preferencesFingerprint(prefs),
		"include_partial=" + strconv.FormatBool(includePartial),
		"limit=" + strconv.Itoa(limit),
		"min_score=" + strconv.Itoa(opts.MinScore),
	}
	if opts.MinVisibleScore != nil {
		parts = append(parts, "min_visible_score="+strconv.Itoa(*opts.MinVisibleScore))
	}
	for c, w := range weights {
		parts = append(parts, "w."+string(c)+"="+strconv.FormatFloat(w, 'f', -1, 64))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return userCachePrefix(userID) + hex.EncodeToString(sum[:])
}

func preferencesFingerprint(prefs *Preferences) string {
	data, err := json.Marshal(prefs)
	if err != nil {
		// fall back to the row timestamp
		return strconv.FormatInt(prefs.UpdatedAt.UnixNano(), 10)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
