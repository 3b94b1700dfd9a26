package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/storefront/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session token has no live entry.
var ErrSessionNotFound = errors.New("session not found")

type RedisCache struct {
	Client     *redis.Client
	sessionTTL time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{Client: redis.NewClient(opts), sessionTTL: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// --- sessions ---

// KeyForSession generates the Redis key holding a session token's user id.
func (c *RedisCache) KeyForSession(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// SaveSession stores token -> userID with the configured TTL.
func (c *RedisCache) SaveSession(ctx context.Context, token string, userID uint64) error {
	return c.Client.Set(ctx, c.KeyForSession(token), strconv.FormatUint(userID, 10), c.sessionTTL).Err()
}

// GetSession resolves a token to its user id and refreshes the TTL.
// Returns ErrSessionNotFound for unknown or expired tokens.
func (c *RedisCache) GetSession(ctx context.Context, token string) (uint64, error) {
	key := c.KeyForSession(token)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	} else if err != nil {
		return 0, err
	}
	// sliding expiry: active sessions stay alive
	_ = c.Client.Expire(ctx, key, c.sessionTTL).Err()
	return strconv.ParseUint(val, 10, 64)
}

// DeleteSession invalidates a token (logout).
func (c *RedisCache) DeleteSession(ctx context.Context, token string) error {
	return c.Client.Del(ctx, c.KeyForSession(token)).Err()
}

// --- wishlist counters ---

// KeyForWishlistCount generates Redis key for a user's wishlist size.
func (c *RedisCache) KeyForWishlistCount(userID uint64) string {
	return fmt.Sprintf("wishlist:count:%d", userID)
}

func (c *RedisCache) UpdateWishlistCount(ctx context.Context, userID uint64, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForWishlistCount(userID), count, time.Hour).Err()
}

func (c *RedisCache) GetWishlistCount(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForWishlistCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// InvalidateWishlistCount drops the cached count after a write.
func (c *RedisCache) InvalidateWishlistCount(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForWishlistCount(userID)).Err()
}
