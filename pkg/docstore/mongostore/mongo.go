package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// Store is a docstore.Store backed by MongoDB. Transactions need a replica set.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and selects the given database
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// collection maps slash separated paths onto dotted collection names
func (s *Store) collection(path string) *mongo.Collection {
	return s.db.Collection(strings.ReplaceAll(path, "/", "."))
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	return s.get(ctx, collection, id)
}

func (s *Store) List(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	return s.list(ctx, collection, filters)
}

func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := uuid.New().String()
	if _, err := s.collection(collection).InsertOne(ctx, withID(id, fields)); err != nil {
		return "", fmt.Errorf("failed to insert %s document: %w", collection, err)
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.set(ctx, collection, id, fields)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.update(ctx, collection, id, fields)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.remove(ctx, collection, id)
}

// RunTransaction runs fn inside a multi-document transaction. The driver
// retries fn on transient transaction errors.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{store: s, ctx: sc})
	})
	return err
}

type mongoTx struct {
	store *Store
	ctx   context.Context
}

func (t *mongoTx) Get(collection, id string) (*docstore.Document, error) {
	return t.store.get(t.ctx, collection, id)
}

func (t *mongoTx) List(collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	return t.store.list(t.ctx, collection, filters)
}

func (t *mongoTx) Set(collection, id string, fields docstore.Fields) error {
	return t.store.set(t.ctx, collection, id, fields)
}

func (t *mongoTx) Update(collection, id string, fields docstore.Fields) error {
	return t.store.update(t.ctx, collection, id, fields)
}

func (t *mongoTx) Delete(collection, id string) error {
	return t.store.remove(t.ctx, collection, id)
}

func (s *Store) get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var raw bson.M
	err := s.collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return toDocument(raw), nil
}

func (s *Store) list(ctx context.Context, collection string, filters []docstore.Filter) ([]docstore.Document, error) {
	query, err := filterQuery(filters)
	if err != nil {
		return nil, err
	}

	cursor, err := s.collection(collection).Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode %s documents: %w", collection, err)
	}

	docs := make([]docstore.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, *toDocument(raw))
	}
	return docs, nil
}

func (s *Store) set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	_, err := s.collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, withID(id, fields), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	res, err := s.collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, collection, id string) error {
	if _, err := s.collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// filterQuery ANDs one clause per filter so repeated fields are all applied.
// Mongo matches a scalar against any element of an array field, so equality
// excludes arrays and array-contains only matches arrays.
func filterQuery(filters []docstore.Filter) (bson.D, error) {
	if len(filters) == 0 {
		return bson.D{}, nil
	}

	clauses := make(bson.A, 0, len(filters))
	for _, f := range filters {
		var cond bson.D
		switch f.Op {
		case docstore.OpEqual:
			cond = bson.D{
				{Key: "$eq", Value: f.Value},
				{Key: "$not", Value: bson.D{{Key: "$type", Value: "array"}}},
			}
		case docstore.OpArrayContains:
			cond = bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: f.Value}}}}
		default:
			return nil, fmt.Errorf("unsupported filter operator %q on %s", f.Op, f.Field)
		}
		clauses = append(clauses, bson.D{{Key: f.Field, Value: cond}})
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

func withID(id string, fields docstore.Fields) bson.M {
	doc := bson.M{"_id": id}
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

func toDocument(raw bson.M) *docstore.Document {
	id, _ := raw["_id"].(string)
	fields := make(docstore.Fields, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = fromBSON(v)
	}
	return &docstore.Document{ID: id, Fields: fields}
}

// fromBSON converts driver specific types into the plain Go values used by the rest of the app
func fromBSON(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = fromBSON(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	case int32:
		return int64(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}
