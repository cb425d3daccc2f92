package beacon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"floorlottery/internal/models"

	"github.com/google/logger"
	"github.com/puzpuzpuz/xsync"
	"github.com/redis/go-redis/v9"
)

// Cache stores fetched rounds. Published rounds never change, so entries
// need no invalidation.
type Cache interface {
	Get(ctx context.Context, chainHash string, round int64) (models.BeaconRound, bool, error)
	Set(ctx context.Context, chainHash string, round int64, value models.BeaconRound) error
}

func cacheKey(chainHash string, round int64) string {
	return chainHash + "|" + strconv.FormatInt(round, 10)
}

type memoryEntry struct {
	value        models.BeaconRound
	lastActivity time.Time
}

// MemoryCache keeps rounds in process memory.
type MemoryCache struct {
	entries *xsync.MapOf[string, memoryEntry]
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: xsync.NewMapOf[memoryEntry]()}
}

func (c *MemoryCache) Get(_ context.Context, chainHash string, round int64) (models.BeaconRound, bool, error) {
	key := cacheKey(chainHash, round)
	entry, ok := c.entries.Load(key)
	if !ok {
		return models.BeaconRound{}, false, nil
	}
	entry.lastActivity = time.Now()
	c.entries.Store(key, entry)
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, chainHash string, round int64, value models.BeaconRound) error {
	c.entries.Store(cacheKey(chainHash, round), memoryEntry{value: value, lastActivity: time.Now()})
	return nil
}

// Len returns the number of cached rounds.
func (c *MemoryCache) Len() int {
	return c.entries.Size()
}

// CleanUpInactive removes rounds that have not been read for longer than
// maxIdle and returns how many were removed.
func (c *MemoryCache) CleanUpInactive(maxIdle time.Duration) int {
	removed := 0
	c.entries.Range(func(key string, entry memoryEntry) bool {
		if time.Since(entry.lastActivity) > maxIdle {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RunJanitor periodically evicts idle rounds until ctx is done.
func (c *MemoryCache) RunJanitor(ctx context.Context, every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.CleanUpInactive(maxIdle); n > 0 {
				logger.Infof("Evicted %d idle drand rounds from cache", n)
			}
		}
	}
}

// RedisCache stores rounds in Redis without expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects to Redis at addr and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolSize:        5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisCache creates a cache storing keys under "drand:".
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "drand:"}
}

func (c *RedisCache) Get(ctx context.Context, chainHash string, round int64) (models.BeaconRound, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+cacheKey(chainHash, round)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.BeaconRound{}, false, nil
	}
	if err != nil {
		return models.BeaconRound{}, false, err
	}

	var value models.BeaconRound
	if err := json.Unmarshal(raw, &value); err != nil {
		return models.BeaconRound{}, false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, chainHash string, round int64, value models.BeaconRound) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+cacheKey(chainHash, round), raw, 0).Err()
}

// CachedFetcher serves rounds from a cache and falls back to a Client.
type CachedFetcher struct {
	client *Client
	cache  Cache
}

// NewCachedFetcher wraps client with cache.
func NewCachedFetcher(client *Client, cache Cache) *CachedFetcher {
	return &CachedFetcher{client: client, cache: cache}
}

// FetchRound returns a cached round or fetches and caches it. Cache
// failures are logged and never fail the fetch.
func (f *CachedFetcher) FetchRound(ctx context.Context, round int64) (models.BeaconRound, error) {
	value, ok, err := f.cache.Get(ctx, f.client.ChainHash(), round)
	if err != nil {
		logger.Warningf("drand cache read for round %d failed: %v", round, err)
	} else if ok {
		return value, nil
	}

	value, err = f.client.FetchRound(ctx, round)
	if err != nil {
		return value, err
	}
	if err := f.cache.Set(ctx, f.client.ChainHash(), round, value); err != nil {
		logger.Warningf("drand cache write for round %d failed: %v", round, err)
	}
	return value, nil
}
