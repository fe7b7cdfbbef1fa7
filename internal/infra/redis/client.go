// Package redis persists faucet cooldowns so restarts do not reopen
// the claim window.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownKey = "faucet:cooldowns"

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Client wraps Redis operations for the cooldown ledger.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and verifies the connection.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Load returns all persisted cooldown entries. Values are unix
// milliseconds; malformed entries are skipped.
func (c *Client) Load(ctx context.Context) (map[string]time.Time, error) {
	entries, err := c.rdb.HGetAll(ctx, cooldownKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall failed: %w", err)
	}

	out := make(map[string]time.Time, len(entries))
	for address, raw := range entries {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out[address] = time.UnixMilli(ms)
	}
	return out, nil
}

// Save records the last claim instant for an address.
func (c *Client) Save(ctx context.Context, address string, claimedAt time.Time) error {
	if err := c.rdb.HSet(ctx, cooldownKey, address, claimedAt.UnixMilli()).Err(); err != nil {
		return fmt.Errorf("hset failed: %w", err)
	}
	return nil
}
