package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mediinsight/platform/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

// Cache keeps serialized session snapshots in Redis with a TTL. It is an
// ephemeral cache, not a record store: expiry loses nothing that cannot
// be regenerated.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Put(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := cacheKey(sess.ID)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Failed to cache session snapshot")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"key":  key,
		"size": len(data),
	}).Debug("Cached session snapshot")
	return nil
}

func (c *Cache) Get(ctx context.Context, id string) (Session, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return sess, nil
}

func cacheKey(id string) string {
	return fmt.Sprintf("cohort:session:%s", id)
}
