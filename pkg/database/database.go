package database

import (
	"context"
	"errors"

	"github.com/example/parlour/internal/models"
)

// ErrInvalidID is returned when an identifier can't address a document in
// the backing store (e.g. a malformed Mongo ObjectID).
var ErrInvalidID = errors.New("invalid document id")

// Filter selects documents by field equality. All pairs must match.
type Filter map[string]any

// Store defines the document operations the service needs. Absent
// documents are reported as a nil Document with a nil error.
type Store interface {
	Insert(ctx context.Context, collection string, doc models.Document) (*models.InsertResult, error)
	FindByID(ctx context.Context, collection string, id string) (models.Document, error)
	FindOne(ctx context.Context, collection string, filter Filter) (models.Document, error)
	// Find returns every document of the collection, at most limit when limit > 0.
	Find(ctx context.Context, collection string, limit int64) ([]models.Document, error)
	// UpdateByID merges set into the document, leaving other fields untouched.
	UpdateByID(ctx context.Context, collection string, id string, set models.Document) (*models.UpdateResult, error)
	// UpdateOne merges set into the first document matching filter. With
	// upsert, a new document built from filter and set is inserted when
	// nothing matches.
	UpdateOne(ctx context.Context, collection string, filter Filter, set models.Document, upsert bool) (*models.UpdateResult, error)
	DeleteByID(ctx context.Context, collection string, id string) (*models.DeleteResult, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MongoStore)(nil)
	_ Store = (*FirestoreService)(nil)
)
