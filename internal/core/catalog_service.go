package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/parlour/internal/models"
	"github.com/example/parlour/pkg/cache"
	"github.com/example/parlour/pkg/database"
)

// cacheKeyGeneration holds a counter bumped by every catalog write. Cached
// entries are keyed under the generation current when their read began, so a
// read that overlaps a write can only fill a key no later read will use.
const cacheKeyGeneration = "services:gen"

func catalogKey(gen int64, name string) string {
	return fmt.Sprintf("services:g%d:%s", gen, name)
}

func limitedServicesName(limit int64) string {
	return fmt.Sprintf("limited:%d", limit)
}

const (
	allServicesName = "all"
	servicePrefix   = "id:"
)

// catalogService implements CatalogService with a read-through cache.
// Cache failures are logged and never fail a request.
type catalogService struct {
	store     database.Store
	cache     cache.Cache
	ttl       time.Duration
	listLimit int64
	logger    *zap.Logger
}

// NewCatalogService creates a CatalogService. A nil cache disables caching.
func NewCatalogService(store database.Store, c cache.Cache, ttl time.Duration, listLimit int64, logger *zap.Logger) CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	return &catalogService{store: store, cache: c, ttl: ttl, listLimit: listLimit, logger: logger}
}

func (s *catalogService) CreateService(ctx context.Context, service models.Document) (*models.InsertResult, error) {
	res, err := s.store.Insert(ctx, models.ServicesCollection, service)
	if err != nil {
		return nil, err
	}
	s.bumpGeneration(ctx)
	return res, nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (models.Document, error) {
	gen, cacheable := s.generation(ctx)
	key := catalogKey(gen, servicePrefix+id)
	var cached models.Document
	if cacheable && s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	doc, err := s.store.FindByID(ctx, models.ServicesCollection, id)
	if err != nil {
		return nil, err
	}
	if cacheable && doc != nil {
		s.remember(ctx, key, doc)
	}
	return doc, nil
}

func (s *catalogService) DeleteService(ctx context.Context, id string) (*models.DeleteResult, error) {
	res, err := s.store.DeleteByID(ctx, models.ServicesCollection, id)
	if err != nil {
		return nil, err
	}
	s.bumpGeneration(ctx)
	return res, nil
}

func (s *catalogService) ListServices(ctx context.Context) ([]models.Document, error) {
	return s.list(ctx, limitedServicesName(s.listLimit), s.listLimit)
}

func (s *catalogService) ListAllServices(ctx context.Context) ([]models.Document, error) {
	return s.list(ctx, allServicesName, 0)
}

func (s *catalogService) list(ctx context.Context, name string, limit int64) ([]models.Document, error) {
	gen, cacheable := s.generation(ctx)
	key := catalogKey(gen, name)
	var cached []models.Document
	if cacheable && s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	docs, err := s.store.Find(ctx, models.ServicesCollection, limit)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.remember(ctx, key, docs)
	}
	return docs, nil
}

// generation returns the current catalog generation. It reports false when
// the counter can't be read, in which case the cache is bypassed.
func (s *catalogService) generation(ctx context.Context) (int64, bool) {
	var gen int64
	if _, err := s.cache.Get(ctx, cacheKeyGeneration, &gen); err != nil {
		s.logger.Warn("Service cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *catalogService) lookup(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn("Service cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *catalogService) remember(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("Service cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// bumpGeneration retires every cached catalog entry.
func (s *catalogService) bumpGeneration(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, cacheKeyGeneration); err != nil {
		s.logger.Warn("Service cache invalidation failed", zap.String("key", cacheKeyGeneration), zap.Error(err))
	}
}
