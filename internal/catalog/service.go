package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/horizon-travel/horizon/internal/shared"
)

// Service serves catalog lookups through a Redis cache. Concurrent lookups
// for the same record are collapsed into a single repository call.
type Service struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs the catalog lookup service. The cache client may be
// nil, in which case every lookup hits the repository.
func NewService(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Get returns the catalog record for a service reference.
func (s *Service) Get(ctx context.Context, serviceType shared.ServiceType, id int64) (*ServiceRecord, error) {
	key := cacheKey(serviceType, id)

	if rec := s.fromCache(ctx, key); rec != nil {
		return rec, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		rec, err := s.repo.Get(ctx, serviceType, id)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ServiceRecord), nil
}

func (s *Service) fromCache(ctx context.Context, key string) *ServiceRecord {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && s.logger != nil {
			s.logger.Warn("catalog cache read", slog.String("key", key), slog.Any("error", err))
		}
		return nil
	}
	var rec ServiceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil
	}
	return &rec
}

func (s *Service) store(ctx context.Context, key string, rec *ServiceRecord) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.Warn("catalog cache write", slog.String("key", key), slog.Any("error", err))
	}
}

func cacheKey(serviceType shared.ServiceType, id int64) string {
	return fmt.Sprintf("catalog:%s:%d", serviceType, id)
}
