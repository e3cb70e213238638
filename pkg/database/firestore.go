package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/parlour/internal/models"
)

// FirestoreService implements Store on Cloud Firestore. Document IDs are
// Firestore document names; the ID is surfaced as the _id field on reads.
type FirestoreService struct {
	client    *firestore.Client
	projectID string
}

// NewFirestoreServiceConfig contains options for creating a new FirestoreService.
type NewFirestoreServiceConfig struct {
	ProjectID       string
	CredentialsFile string // Path to the service account key JSON file. If empty, ADC will be used.
}

// NewFirestoreService creates a new instance of FirestoreService.
func NewFirestoreService(ctx context.Context, cfg NewFirestoreServiceConfig) (*FirestoreService, error) {
	var client *firestore.Client
	var err error

	if cfg.CredentialsFile != "" {
		client, err = firestore.NewClient(ctx, cfg.ProjectID, option.WithCredentialsFile(cfg.CredentialsFile))
	} else {
		client, err = firestore.NewClient(ctx, cfg.ProjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return NewFirestoreServiceFromClient(client, cfg.ProjectID), nil
}

// NewFirestoreServiceFromClient wraps a client obtained elsewhere, e.g. from
// the Firebase app.
func NewFirestoreServiceFromClient(client *firestore.Client, projectID string) *FirestoreService {
	if client == nil {
		log.Fatal("Firestore client is not initialized for FirestoreService.")
	}
	return &FirestoreService{client: client, projectID: projectID}
}

// Insert adds a document with an auto-generated ID, or with the ID given in
// its _id field.
func (s *FirestoreService) Insert(ctx context.Context, collection string, doc models.Document) (*models.InsertResult, error) {
	data := doc.Clone()
	if data == nil {
		data = models.Document{}
	}
	ref := s.client.Collection(collection).NewDoc()
	if raw, ok := data[models.IDField]; ok {
		given, isString := raw.(string)
		if !isString || given == "" {
			return nil, fmt.Errorf("insert into %s: %w", collection, ErrInvalidID)
		}
		ref = s.client.Collection(collection).Doc(given)
		delete(data, models.IDField)
	}
	if _, err := ref.Create(ctx, map[string]any(data)); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return &models.InsertResult{Acknowledged: true, InsertedID: ref.ID}, nil
}

// FindByID retrieves a document by its Firestore document ID.
func (s *FirestoreService) FindByID(ctx context.Context, collection string, id string) (models.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("find in %s: %w", collection, ErrInvalidID)
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s/%s: %w", collection, id, err)
	}
	return fromSnapshot(snap), nil
}

func (s *FirestoreService) query(collection string, filter Filter) firestore.Query {
	q := s.client.Collection(collection).Query
	for k, v := range filter {
		q = q.Where(k, "==", v)
	}
	return q
}

// FindOne returns the first document matching filter.
func (s *FirestoreService) FindOne(ctx context.Context, collection string, filter Filter) (models.Document, error) {
	iter := s.query(collection, filter).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	return fromSnapshot(snap), nil
}

// Find lists the collection, capped at limit when limit > 0.
func (s *FirestoreService) Find(ctx context.Context, collection string, limit int64) ([]models.Document, error) {
	q := s.client.Collection(collection).Query
	if limit > 0 {
		q = q.Limit(int(limit))
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []models.Document{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate %s: %w", collection, err)
		}
		out = append(out, fromSnapshot(snap))
	}
	return out, nil
}

// UpdateByID merges set into an existing document. A missing document is
// reported as zero matches rather than created.
func (s *FirestoreService) UpdateByID(ctx context.Context, collection string, id string, set models.Document) (*models.UpdateResult, error) {
	if id == "" {
		return nil, fmt.Errorf("update in %s: %w", collection, ErrInvalidID)
	}
	updates, err := toUpdates(id, set)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	res := &models.UpdateResult{Acknowledged: true}
	ref := s.client.Collection(collection).Doc(id)
	if len(updates) == 0 {
		// Nothing to write; report whether the document exists.
		if _, err := ref.Get(ctx); err != nil {
			if status.Code(err) == codes.NotFound {
				return res, nil
			}
			return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
		}
		res.MatchedCount = 1
		return res, nil
	}
	_, err = ref.Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return res, nil
		}
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	res.MatchedCount = 1
	res.ModifiedCount = 1
	return res, nil
}

// UpdateOne merges set into the first match of filter inside a transaction,
// creating the document from filter and set when upsert is requested.
func (s *FirestoreService) UpdateOne(ctx context.Context, collection string, filter Filter, set models.Document, upsert bool) (*models.UpdateResult, error) {
	var res *models.UpdateResult
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		res = &models.UpdateResult{Acknowledged: true}
		snaps, err := tx.Documents(s.query(collection, filter).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			ref := snaps[0].Ref
			updates, err := toUpdates(ref.ID, set)
			if err != nil {
				return err
			}
			res.MatchedCount = 1
			if len(updates) == 0 {
				return nil
			}
			res.ModifiedCount = 1
			return tx.Update(ref, updates)
		}
		if !upsert {
			return nil
		}

		data := map[string]any{}
		for k, v := range filter {
			data[k] = v
		}
		for k, v := range set {
			if k == models.IDField {
				continue
			}
			data[k] = v
		}
		ref := s.client.Collection(collection).NewDoc()
		if given, ok := set[models.IDField].(string); ok && given != "" {
			ref = s.client.Collection(collection).Doc(given)
		}
		res.UpsertedCount = 1
		res.UpsertedID = ref.ID
		return tx.Create(ref, data)
	})
	if err != nil {
		return nil, fmt.Errorf("update in %s: %w", collection, err)
	}
	return res, nil
}

// DeleteByID removes a document inside a transaction so the deleted count
// reflects whether it existed.
func (s *FirestoreService) DeleteByID(ctx context.Context, collection string, id string) (*models.DeleteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("delete from %s: %w", collection, ErrInvalidID)
	}
	ref := s.client.Collection(collection).Doc(id)
	res := &models.DeleteResult{Acknowledged: true}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		res.DeletedCount = 0
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}
		res.DeletedCount = 1
		return tx.Delete(ref)
	})
	if err != nil {
		return nil, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return res, nil
}

// Ping issues a minimal read to confirm the backend is reachable.
func (s *FirestoreService) Ping(ctx context.Context) error {
	iter := s.client.Collection(models.UsersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// Close closes the Firestore client.
func (s *FirestoreService) Close(context.Context) error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// toUpdates turns a top-level merge into field updates. The _id field is
// the document name and may only be repeated unchanged.
func toUpdates(id string, set models.Document) ([]firestore.Update, error) {
	updates := make([]firestore.Update, 0, len(set))
	for k, v := range set {
		if k == models.IDField {
			if given, ok := v.(string); !ok || given != id {
				return nil, fmt.Errorf("field %q is immutable", models.IDField)
			}
			continue
		}
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	return updates, nil
}

func fromSnapshot(snap *firestore.DocumentSnapshot) models.Document {
	data := snap.Data()
	out := make(models.Document, len(data)+1)
	for k, v := range data {
		out[k] = normalizeFirestore(v)
	}
	out[models.IDField] = snap.Ref.ID
	return out
}

func normalizeFirestore(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *firestore.DocumentRef:
		return t.Path
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeFirestore(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeFirestore(e)
		}
		return out
	default:
		return v
	}
}
