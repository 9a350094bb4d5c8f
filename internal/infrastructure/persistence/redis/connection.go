// Package redis provides Redis connection management and the Redis-backed
// implementations of the session and counter store collaborators.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storekit/admission/pkg/logger"
)

// Config holds Redis connection parameters.
type Config struct {
	// Addresses lists one address for standalone mode, several for cluster
	Addresses []string `mapstructure:"addresses"`
	Password  string   `mapstructure:"password"`
	DB        int      `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Connection manages the Redis client lifecycle.
type Connection struct {
	client redis.UniversalClient
	log    logger.Logger
}

// NewConnection creates a Redis connection and verifies it with a ping.
func NewConnection(cfg *Config, log logger.Logger) (*Connection, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("at least one redis address is required")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info(ctx, "redis connection established",
		logger.Any("addresses", cfg.Addresses),
		logger.Int("db", cfg.DB),
	)

	return &Connection{client: client, log: log}, nil
}

// Client returns the underlying universal client.
func (c *Connection) Client() redis.UniversalClient {
	return c.client
}

// HealthCheck pings the server.
func (c *Connection) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's resources.
func (c *Connection) Close() error {
	return c.client.Close()
}
