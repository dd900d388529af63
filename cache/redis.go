package cache

import (
	"context"
	"fmt"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis keys
	LogsKey = "dexter:telephony:logs"

	// Pub/Sub channels
	EventStreamChannel = "dexter:telephony:events"
)

// Client wraps the go-redis client
type Client struct {
	*redis.Client
}

// New creates and verifies a Redis client. It returns nil, nil when Redis is not configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Client{rdb}, nil
}

// AddToList adds an item to the start of a list and trims the list to a max length.
func (c *Client) AddToList(ctx context.Context, key, value string, maxLength int64) error {
	pipe := c.Pipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, maxLength-1)
	_, err := pipe.Exec(ctx)
	return err
}

// GetListRange returns a range of items from a list.
func (c *Client) GetListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.LRange(ctx, key, start, stop).Result()
}

// PublishEvent publishes an event to the event stream.
func (c *Client) PublishEvent(ctx context.Context, channel, message string) error {
	return c.Publish(ctx, channel, message).Err()
}
