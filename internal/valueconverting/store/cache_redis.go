package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"valueconverting/internal/valueconverting/metrics"
	"valueconverting/internal/valueconverting/models"
	"valueconverting/pkg/platform/sentinel"
)

const cacheKeyPrefix = "valueconverting:"

// Backend is the store a CachedStore reads through to.
type Backend interface {
	List(ctx context.Context, q models.ListQuery) (models.Page[models.ValueConverting], error)
	FindByID(ctx context.Context, id int64) (*models.ValueConverting, error)
	Save(ctx context.Context, vc *models.ValueConverting) error
}

// CachedStore is a read-through Redis cache over FindByID. Cache failures
// are logged and fall back to the backend; they never reach the caller.
type CachedStore struct {
	backend Backend
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// CachedStoreOption configures a CachedStore.
type CachedStoreOption func(*CachedStore)

func WithCacheLogger(logger *slog.Logger) CachedStoreOption {
	return func(c *CachedStore) {
		c.logger = logger
	}
}

func WithCacheMetrics(m *metrics.Metrics) CachedStoreOption {
	return func(c *CachedStore) {
		c.metrics = m
	}
}

// NewCached wraps backend with a Redis cache whose entries live for ttl.
func NewCached(backend Backend, client *redis.Client, ttl time.Duration, opts ...CachedStoreOption) *CachedStore {
	c := &CachedStore{
		backend: backend,
		client:  client,
		ttl:     ttl,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func cacheKey(id int64) string {
	return cacheKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *CachedStore) FindByID(ctx context.Context, id int64) (*models.ValueConverting, error) {
	key := cacheKey(id)
	cached, err := c.get(ctx, key, id)
	switch {
	case err == nil:
		c.metrics.IncrementCache("hit")
		return cached, nil
	case errors.Is(err, sentinel.ErrCacheMiss):
		c.metrics.IncrementCache("miss")
	default:
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		c.metrics.IncrementCache("error")
	}

	vc, err := c.backend.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(vc); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return vc, nil
}

// get returns sentinel.ErrCacheMiss when key is absent.
func (c *CachedStore) get(ctx context.Context, key string, id int64) (*models.ValueConverting, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var vc models.ValueConverting
	if err := json.Unmarshal(raw, &vc); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	vc.ID = id
	return &vc, nil
}

// Save writes through to the backend and drops any cached entry for the
// assigned id.
func (c *CachedStore) Save(ctx context.Context, vc *models.ValueConverting) error {
	if err := c.backend.Save(ctx, vc); err != nil {
		return err
	}
	if err := c.client.Del(ctx, cacheKey(vc.ID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "id", vc.ID, "error", err)
	}
	return nil
}

// List is not cached.
func (c *CachedStore) List(ctx context.Context, q models.ListQuery) (models.Page[models.ValueConverting], error) {
	return c.backend.List(ctx, q)
}
