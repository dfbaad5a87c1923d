// Package store externalizes index snapshots to Redis. The cache is
// advisory: every entry carries a TTL, a miss means a rescan, and the
// in-memory index never depends on the store being reachable.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"symidx/internal/config"
	"symidx/internal/indexer"
	"symidx/internal/logging"
)

// RedisStore persists snapshots as compressed blobs under a single
// prefixed key.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *logging.Logger
}

// NewRedisStore connects to Redis and verifies connectivity before
// returning. Callers treat a connection failure as "run without cache".
func NewRedisStore(ctx context.Context, cfg config.CacheConfig, logger *logging.Logger) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("cache addr missing")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	logger.Info("Index store connected", map[string]interface{}{
		"addr": cfg.Addr,
		"ttl":  ttl.String(),
	})

	return &RedisStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// Close releases the Redis connection
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

// HealthCheck verifies connectivity for the health endpoint
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}
	return nil
}

func (s *RedisStore) snapshotKey() string {
	return s.keyPrefix + ":snapshot"
}

// SaveSnapshot writes the snapshot with the configured TTL. Entries
// expire on their own; there is no explicit invalidation path.
func (s *RedisStore) SaveSnapshot(ctx context.Context, snap *indexer.StoreSnapshot) error {
	blob, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := s.snapshotKey()
	if err := s.client.Set(ctx, key, blob, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	s.logger.Debug("Snapshot cached", map[string]interface{}{
		"key":   key,
		"bytes": len(blob),
		"files": len(snap.Index),
	})
	return nil
}

// LoadSnapshot fetches the last cached snapshot. A missing or expired
// key is a miss, not an error; a blob that fails to decode is also
// treated as a miss since a rescan rebuilds everything it held.
func (s *RedisStore) LoadSnapshot(ctx context.Context) (*indexer.StoreSnapshot, bool, error) {
	key := s.snapshotKey()

	blob, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		s.logger.Debug("Snapshot cache miss", map[string]interface{}{
			"key": key,
		})
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	snap, err := decodeSnapshot(blob)
	if err != nil {
		s.logger.Warn("Cached snapshot undecodable, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false, nil
	}

	s.logger.Debug("Snapshot cache hit", map[string]interface{}{
		"key":   key,
		"files": len(snap.Index),
	})
	return snap, true, nil
}
