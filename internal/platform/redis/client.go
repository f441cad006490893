// Package redis connects the coordinator to the lock store backing the
// tenant setup lock. Redis is optional here: a single-instance deployment
// runs fine on the in-process locker, so an empty URL means "not configured"
// rather than an error.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/config"
)

// Client carries the go-redis client plus the readiness hook the health
// endpoint polls.
type Client struct {
	*redis.Client
}

// New dials the lock store, or returns (nil, nil) when no URL is configured.
// Callers must treat a nil client as "locking falls back to in-process".
func New(cfg config.Redis) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	// Fail startup rather than discover a dead lock store on the first
	// tenant setup.
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports lock store reachability for the readiness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
