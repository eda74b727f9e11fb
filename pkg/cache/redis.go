// Package cache wraps the redis client used to memoize resolved ability
// sets. The cache is optional: a nil *Client skips caching entirely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps a redis connection with the key layout used by the ability
// resolver.
type Client struct {
	rdb *redis.Client
}

// Config holds redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to redis and verifies the connection.
func NewClient(cfg *Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func abilityKey(userID, companyID uint) string {
	return fmt.Sprintf("ability:u%d:c%d", userID, companyID)
}

// GetAbilities returns the cached ability names for (user, company), or
// ok=false on a miss. Errors are treated as misses by callers.
func (c *Client) GetAbilities(ctx context.Context, userID, companyID uint) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, abilityKey(userID, companyID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, false, err
	}
	return names, true, nil
}

// SetAbilities caches the ability names for (user, company).
func (c *Client) SetAbilities(ctx context.Context, userID, companyID uint, names []string, ttl time.Duration) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, abilityKey(userID, companyID), raw, ttl).Err()
}

// InvalidateAbilities drops the cached set for (user, company). Called
// whenever a membership or its profile changes.
func (c *Client) InvalidateAbilities(ctx context.Context, userID, companyID uint) error {
	return c.rdb.Del(ctx, abilityKey(userID, companyID)).Err()
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
