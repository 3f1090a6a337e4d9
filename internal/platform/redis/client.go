package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/agenghermawan/clandestineproject/internal/platform/config"
)

const clientName = "clandestine-gateway"

// Client is the shared connection behind the rate limit buckets.
type Client struct {
	*redis.Client
}

// New dials REDIS_URL and pings it once. An empty URL yields (nil, nil) and
// the gateway keeps its buckets in process memory instead.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return &Client{Client: client}, nil
}

// Options turns the env-driven config into go-redis options. Pool settings
// left at zero keep the go-redis defaults.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.ClientName = clientName
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Health is registered as the "redis" check on /health.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
