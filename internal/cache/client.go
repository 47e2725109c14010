// Package cache wraps the Redis cache store in front of the trading results
// database. The store is an optimization, never a correctness dependency:
// every operation degrades to "cache is empty" when Redis is unreachable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// GetStatus distinguishes a cold key from a dead store, so callers and tests
// can tell a miss and an outage apart.
type GetStatus int

const (
	Hit GetStatus = iota
	Miss
	Unavailable
)

// Client is a lazily-connected Redis client. The first call from any
// goroutine establishes the connection; a failed attempt is retried on the
// next call, so the process runs cache-less for as long as Redis stays down.
type Client struct {
	addr     string
	password string
	db       int
	logger   *logrus.Logger

	mu  sync.Mutex
	rdb *redis.Client
}

func NewClient(addr, password string, db int, logger *logrus.Logger) *Client {
	return &Client{
		addr:     addr,
		password: password,
		db:       db,
		logger:   logger,
	}
}

// conn returns the shared Redis connection, dialing it on first use. Returns
// nil when the store is unreachable.
func (c *Client) conn(ctx context.Context) *redis.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb != nil {
		return c.rdb
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.addr,
		Password: c.password,
		DB:       c.db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.logger.WithError(err).Warn("redis unreachable, running without cache")
		_ = rdb.Close()
		return nil
	}

	c.logger.WithField("addr", c.addr).Info("redis connection established")
	c.rdb = rdb
	return c.rdb
}

// Get returns the raw cached payload for key. A missing key, an unreachable
// store, or a failed read all come back as non-Hit statuses, never errors.
func (c *Client) Get(ctx context.Context, key string) (string, GetStatus) {
	rdb := c.conn(ctx)
	if rdb == nil {
		return "", Unavailable
	}

	value, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", Miss
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache get failed")
		return "", Unavailable
	}
	return value, Hit
}

// Set stores value under key with the given TTL. Strings are stored
// verbatim, everything else is marshalled to JSON (times as RFC 3339).
// A zero TTL means no expiry. Failures are logged and dropped.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	rdb := c.conn(ctx)
	if rdb == nil {
		c.logger.WithField("key", key).Warn("redis unavailable, cache write skipped")
		return
	}

	payload, err := encode(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Error("cache value not serializable")
		return
	}

	if err := rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache set failed")
		return
	}
	c.logger.WithFields(logrus.Fields{"key": key, "ttl": ttl.String()}).Debug("cache set")
}

// FlushAll unconditionally clears every key in the store.
func (c *Client) FlushAll(ctx context.Context) {
	rdb := c.conn(ctx)
	if rdb == nil {
		c.logger.Warn("redis unavailable, cache flush skipped")
		return
	}

	if err := rdb.FlushAll(ctx).Err(); err != nil {
		c.logger.WithError(err).Error("cache flush failed")
		return
	}
	c.logger.Info("cache flushed")
}

// Health reports whether the cache store is reachable.
func (c *Client) Health(ctx context.Context) error {
	rdb := c.conn(ctx)
	if rdb == nil {
		return errors.New("redis unreachable")
	}
	return rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Close()
	c.rdb = nil
	return err
}

func encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
