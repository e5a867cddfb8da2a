//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"valueconverting/internal/valueconverting/metrics"
	"valueconverting/internal/valueconverting/store"
	"valueconverting/pkg/platform/sentinel"
	"valueconverting/pkg/testutil/containers"
)

type CachedStoreSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backend *store.InMemoryStore
	metrics *metrics.Metrics
	cache   *store.CachedStore
}

func TestCachedStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backend = store.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.cache = store.NewCached(s.backend, s.redis.Client, time.Minute, store.WithCacheMetrics(s.metrics))
}

func (s *CachedStoreSuite) TestReadThrough() {
	ctx := context.Background()
	vc := newRecord(1, "Status", map[string]string{"A": "1"})
	s.Require().NoError(s.cache.Save(ctx, vc))

	first, err := s.cache.FindByID(ctx, vc.ID)
	s.Require().NoError(err)
	s.Equal(*vc, *first)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheRequests.WithLabelValues("miss")))

	second, err := s.cache.FindByID(ctx, vc.ID)
	s.Require().NoError(err)
	s.Equal(*vc, *second, "cached copy keeps the id")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheRequests.WithLabelValues("hit")))

	ttl, err := s.redis.Client.TTL(ctx, "valueconverting:1").Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *CachedStoreSuite) TestMissIsNotCached() {
	ctx := context.Background()

	_, err := s.cache.FindByID(ctx, 42)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	exists, err := s.redis.Client.Exists(ctx, "valueconverting:42").Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *CachedStoreSuite) TestUndecodableEntryFallsBackToBackend() {
	ctx := context.Background()
	vc := newRecord(1, "Status", map[string]string{"A": "1"})
	s.Require().NoError(s.cache.Save(ctx, vc))
	s.Require().NoError(s.redis.Client.Set(ctx, "valueconverting:1", "not json", time.Minute).Err())

	found, err := s.cache.FindByID(ctx, vc.ID)
	s.Require().NoError(err)
	s.Equal("Status", found.DisplayName)
}
