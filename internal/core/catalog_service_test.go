package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/models"
	"github.com/example/parlour/pkg/cache"
	"github.com/example/parlour/pkg/database"
)

func newCachedCatalog(t *testing.T, limit int64) (CatalogService, *database.MemoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), cache.NewRedisCacheConfig{Address: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })

	store := database.NewMemoryStore()
	return NewCatalogService(store, rc, time.Minute, limit, zap.NewNop()), store, mr
}

// pausingStore holds the next Find after it has read the store, until release
// is closed.
type pausingStore struct {
	*database.MemoryStore
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func newPausingStore() *pausingStore {
	s := &pausingStore{
		MemoryStore: database.NewMemoryStore(),
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
	s.armed.Store(true)
	return s
}

func (s *pausingStore) Find(ctx context.Context, collection string, limit int64) ([]models.Document, error) {
	docs, err := s.MemoryStore.Find(ctx, collection, limit)
	if s.armed.CompareAndSwap(true, false) {
		close(s.read)
		<-s.release
	}
	return docs, err
}

func seedServices(t *testing.T, svc CatalogService, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		res, err := svc.CreateService(context.Background(), models.Document{"name": n})
		if err != nil {
			t.Fatalf("CreateService(%s) error = %v", n, err)
		}
		ids = append(ids, res.InsertedID.(string))
	}
	return ids
}

func TestCatalogListLimit(t *testing.T) {
	svc := NewCatalogService(database.NewMemoryStore(), nil, time.Minute, 3, zap.NewNop())
	ctx := context.Background()
	seedServices(t, svc, "facial", "haircut", "manicure", "pedicure", "massage")

	limited, err := svc.ListServices(ctx)
	if err != nil {
		t.Fatalf("ListServices() error = %v", err)
	}
	if len(limited) != 3 {
		t.Errorf("len(ListServices) = %d, want 3", len(limited))
	}

	all, err := svc.ListAllServices(ctx)
	if err != nil {
		t.Fatalf("ListAllServices() error = %v", err)
	}
	if len(all) != 5 {
		t.Errorf("len(ListAllServices) = %d, want 5", len(all))
	}
}

func TestCatalogListFewerThanLimit(t *testing.T) {
	svc := NewCatalogService(database.NewMemoryStore(), nil, time.Minute, 3, zap.NewNop())
	seedServices(t, svc, "facial", "haircut")

	got, err := svc.ListServices(context.Background())
	if err != nil {
		t.Fatalf("ListServices() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestCatalogCacheServesReads(t *testing.T) {
	svc, store, mr := newCachedCatalog(t, 3)
	ctx := context.Background()
	ids := seedServices(t, svc, "facial")

	if _, err := svc.ListAllServices(ctx); err != nil {
		t.Fatalf("ListAllServices() error = %v", err)
	}
	if !mr.Exists(catalogKey(1, allServicesName)) {
		t.Fatalf("expected %s to be cached", catalogKey(1, allServicesName))
	}

	// Write behind the service's back; the cached list must still be served.
	if _, err := store.Insert(ctx, models.ServicesCollection, models.Document{"name": "hidden"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	all, err := svc.ListAllServices(ctx)
	if err != nil {
		t.Fatalf("ListAllServices() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len = %d, want cached 1", len(all))
	}

	got, err := svc.GetService(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetService() error = %v", err)
	}
	if got["name"] != "facial" {
		t.Errorf("name = %v, want facial", got["name"])
	}
	if !mr.Exists(catalogKey(1, servicePrefix+ids[0])) {
		t.Errorf("expected service %s to be cached", ids[0])
	}
}

func TestCatalogCreateInvalidatesLists(t *testing.T) {
	svc, _, mr := newCachedCatalog(t, 3)
	ctx := context.Background()
	seedServices(t, svc, "facial")

	if _, err := svc.ListServices(ctx); err != nil {
		t.Fatalf("ListServices() error = %v", err)
	}
	if _, err := svc.ListAllServices(ctx); err != nil {
		t.Fatalf("ListAllServices() error = %v", err)
	}
	seedServices(t, svc, "haircut")

	if got, _ := mr.Get(cacheKeyGeneration); got != "2" {
		t.Fatalf("generation = %q, want 2 after two creates", got)
	}
	all, err := svc.ListAllServices(ctx)
	if err != nil {
		t.Fatalf("ListAllServices() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len = %d, want 2", len(all))
	}
}

func TestCatalogDeleteInvalidatesService(t *testing.T) {
	svc, _, _ := newCachedCatalog(t, 3)
	ctx := context.Background()
	ids := seedServices(t, svc, "facial", "haircut")

	if _, err := svc.GetService(ctx, ids[0]); err != nil {
		t.Fatalf("GetService() error = %v", err)
	}
	res, err := svc.DeleteService(ctx, ids[0])
	if err != nil {
		t.Fatalf("DeleteService() error = %v", err)
	}
	if res.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", res.DeletedCount)
	}

	got, err := svc.GetService(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetService() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetService after delete = %v, want nil", got)
	}

	res, err = svc.DeleteService(ctx, ids[0])
	if err != nil {
		t.Fatalf("second DeleteService() error = %v", err)
	}
	if res.DeletedCount != 0 {
		t.Errorf("second DeletedCount = %d, want 0", res.DeletedCount)
	}
}

func TestCatalogSurvivesCacheOutage(t *testing.T) {
	svc, _, mr := newCachedCatalog(t, 3)
	seedServices(t, svc, "facial")
	mr.SetError("LOADING server is loading")

	all, err := svc.ListAllServices(context.Background())
	if err != nil {
		t.Fatalf("ListAllServices() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len = %d, want 1", len(all))
	}
}

func TestCatalogListOverlappingCreateIsNotCachedStale(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), cache.NewRedisCacheConfig{Address: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })

	store := newPausingStore()
	svc := NewCatalogService(store, rc, time.Minute, 3, zap.NewNop())
	ctx := context.Background()

	done := make(chan []models.Document)
	go func() {
		docs, err := svc.ListAllServices(ctx)
		if err != nil {
			t.Errorf("ListAllServices() error = %v", err)
		}
		done <- docs
	}()

	<-store.read
	seedServices(t, svc, "facial")
	close(store.release)

	if first := <-done; len(first) != 0 {
		t.Fatalf("overlapping read saw %d services, want 0", len(first))
	}

	all, err := svc.ListAllServices(ctx)
	if err != nil {
		t.Fatalf("ListAllServices() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len = %d after create, want 1", len(all))
	}
}
