package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/example/parlour/internal/models"
)

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStoreConfig contains options for creating a new MongoStore.
type NewMongoStoreConfig struct {
	URI      string
	Database string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg NewMongoStoreConfig) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(cfg.Database)}, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return oid, nil
}

// Insert adds doc to the collection.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc models.Document) (*models.InsertResult, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return &models.InsertResult{Acknowledged: true, InsertedID: normalize(res.InsertedID)}, nil
}

// FindByID looks a document up by its ObjectID hex string.
func (s *MongoStore) FindByID(ctx context.Context, collection string, id string) (models.Document, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, collection, bson.M{models.IDField: oid})
}

// FindOne returns the first document matching filter.
func (s *MongoStore) FindOne(ctx context.Context, collection string, filter Filter) (models.Document, error) {
	return s.findOne(ctx, collection, bson.M(filter))
}

func (s *MongoStore) findOne(ctx context.Context, collection string, filter bson.M) (models.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	return toDocument(raw), nil
}

// Find lists the collection, capped at limit when limit > 0.
func (s *MongoStore) Find(ctx context.Context, collection string, limit int64) ([]models.Document, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	out := make([]models.Document, 0, len(raws))
	for _, raw := range raws {
		out = append(out, toDocument(raw))
	}
	return out, nil
}

// UpdateByID applies set with $set to the document with the given ObjectID.
func (s *MongoStore) UpdateByID(ctx context.Context, collection string, id string, set models.Document) (*models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, collection, bson.M{models.IDField: oid}, set, false)
}

// UpdateOne applies set with $set to the first document matching filter.
func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter Filter, set models.Document, upsert bool) (*models.UpdateResult, error) {
	return s.update(ctx, collection, bson.M(filter), set, upsert)
}

func (s *MongoStore) update(ctx context.Context, collection string, filter bson.M, set models.Document, upsert bool) (*models.UpdateResult, error) {
	res, err := s.db.Collection(collection).UpdateOne(ctx, filter,
		bson.M{"$set": bson.M(set)}, options.Update().SetUpsert(upsert))
	if err != nil {
		return nil, fmt.Errorf("update in %s: %w", collection, err)
	}
	return &models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    normalize(res.UpsertedID),
	}, nil
}

// DeleteByID removes the document with the given ObjectID.
func (s *MongoStore) DeleteByID(ctx context.Context, collection string, id string) (*models.DeleteResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{models.IDField: oid})
	if err != nil {
		return nil, fmt.Errorf("delete from %s: %w", collection, err)
	}
	return &models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(raw bson.M) models.Document {
	out := make(models.Document, len(raw))
	for k, v := range raw {
		out[k] = normalize(v)
	}
	return out
}

// normalize converts driver values into the JSON value set of models.Document.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case primitive.Decimal128:
		return t.String()
	case primitive.M:
		return map[string]any(toDocument(t))
	case map[string]any:
		return map[string]any(toDocument(bson.M(t)))
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
