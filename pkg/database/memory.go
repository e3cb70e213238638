package database

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/example/parlour/internal/models"
)

// MemoryStore is a process-local Store. Each call is atomic with respect to
// the others, matching the per-operation guarantee of the real backends.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	docs  map[string]models.Document
	order []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]models.Document)}
		s.collections[name] = c
	}
	return c
}

func (c *memCollection) add(id string, doc models.Document) {
	doc[models.IDField] = id
	c.docs[id] = doc
	c.order = append(c.order, id)
}

func (c *memCollection) remove(id string) {
	delete(c.docs, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

func (c *memCollection) first(filter Filter) (string, models.Document) {
	for _, id := range c.order {
		if matches(c.docs[id], filter) {
			return id, c.docs[id]
		}
	}
	return "", nil
}

// matches reports whether doc equals filter on every field. A nil filter
// value also matches a missing field.
func matches(doc models.Document, filter Filter) bool {
	for k, v := range filter {
		got, ok := doc[k]
		if !ok {
			if v != nil {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

// merge applies set to doc and reports whether any field changed.
func merge(doc, set models.Document) (bool, error) {
	if id, ok := set[models.IDField]; ok && !reflect.DeepEqual(id, doc[models.IDField]) {
		return false, fmt.Errorf("field %q is immutable", models.IDField)
	}
	changed := false
	for k, v := range set {
		if cur, ok := doc[k]; ok && reflect.DeepEqual(cur, v) {
			continue
		}
		doc[k] = models.CloneValue(v)
		changed = true
	}
	return changed, nil
}

// Insert stores a copy of doc under a fresh id, or under its own string _id.
func (s *MemoryStore) Insert(_ context.Context, collection string, doc models.Document) (*models.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	stored := doc.Clone()
	if stored == nil {
		stored = models.Document{}
	}
	id := uuid.NewString()
	if raw, ok := stored[models.IDField]; ok {
		given, isString := raw.(string)
		if !isString || given == "" {
			return nil, fmt.Errorf("insert into %s: %w", collection, ErrInvalidID)
		}
		if _, exists := c.docs[given]; exists {
			return nil, fmt.Errorf("insert into %s: duplicate key %q", collection, given)
		}
		id = given
	}
	c.add(id, stored)
	return &models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// FindByID returns a copy of the document or nil when absent.
func (s *MemoryStore) FindByID(_ context.Context, collection string, id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}
	return c.docs[id].Clone(), nil
}

// FindOne returns the first document, in insertion order, matching filter.
func (s *MemoryStore) FindOne(_ context.Context, collection string, filter Filter) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}
	_, doc := c.first(filter)
	return doc.Clone(), nil
}

// Find lists documents in insertion order.
func (s *MemoryStore) Find(_ context.Context, collection string, limit int64) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Document{}
	c, ok := s.collections[collection]
	if !ok {
		return out, nil
	}
	for _, id := range c.order {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, c.docs[id].Clone())
	}
	return out, nil
}

// UpdateByID merges set into the document with the given id.
func (s *MemoryStore) UpdateByID(_ context.Context, collection string, id string, set models.Document) (*models.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &models.UpdateResult{Acknowledged: true}
	doc, ok := s.collection(collection).docs[id]
	if !ok {
		return res, nil
	}
	res.MatchedCount = 1
	changed, err := merge(doc, set)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if changed {
		res.ModifiedCount = 1
	}
	return res, nil
}

// UpdateOne merges set into the first match of filter, upserting on request.
func (s *MemoryStore) UpdateOne(_ context.Context, collection string, filter Filter, set models.Document, upsert bool) (*models.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	res := &models.UpdateResult{Acknowledged: true}
	id, doc := c.first(filter)
	if doc != nil {
		res.MatchedCount = 1
		changed, err := merge(doc, set)
		if err != nil {
			return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
		}
		if changed {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	if !upsert {
		return res, nil
	}

	created := models.Document{}
	for k, v := range filter {
		created[k] = v
	}
	newID := uuid.NewString()
	if raw, ok := set[models.IDField].(string); ok && raw != "" {
		newID = raw
	}
	created[models.IDField] = newID
	if _, err := merge(created, set); err != nil {
		return nil, fmt.Errorf("upsert into %s: %w", collection, err)
	}
	c.add(newID, created)
	res.UpsertedCount = 1
	res.UpsertedID = newID
	return res, nil
}

// DeleteByID removes the document with the given id.
func (s *MemoryStore) DeleteByID(_ context.Context, collection string, id string) (*models.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &models.DeleteResult{Acknowledged: true}
	c := s.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return res, nil
	}
	c.remove(id)
	res.DeletedCount = 1
	return res, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }
