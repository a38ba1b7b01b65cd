package firestorestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// Store is a docstore.Store backed by Cloud Firestore
type Store struct {
	client *firestore.Client
}

// NewStore connects to Firestore for the given project.
// credentialsFile may be empty to use application default credentials.
func NewStore(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	return fromSnapshot(collection, id, snap, err)
}

func (s *Store) List(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	query, err := applyFilters(s.client.Collection(collection).Query, filters)
	if err != nil {
		return nil, err
	}
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return toDocuments(snaps), nil
}

func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, map[string]any(fields))
	if err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]any(fields)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, toUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
		}
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// RunTransaction uses a Firestore transaction, which Firestore retries on
// contention. fn must therefore be safe to run more than once.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &fsTx{client: s.client, tx: tx})
	})
}

type fsTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *fsTx) Get(collection, id string) (*docstore.Document, error) {
	snap, err := t.tx.Get(t.client.Collection(collection).Doc(id))
	return fromSnapshot(collection, id, snap, err)
}

func (t *fsTx) List(collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	query, err := applyFilters(t.client.Collection(collection).Query, filters)
	if err != nil {
		return nil, err
	}
	snaps, err := t.tx.Documents(query).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return toDocuments(snaps), nil
}

func (t *fsTx) Set(collection, id string, fields docstore.Fields) error {
	return t.tx.Set(t.client.Collection(collection).Doc(id), map[string]any(fields))
}

func (t *fsTx) Update(collection, id string, fields docstore.Fields) error {
	return t.tx.Update(t.client.Collection(collection).Doc(id), toUpdates(fields))
}

func (t *fsTx) Delete(collection, id string) error {
	return t.tx.Delete(t.client.Collection(collection).Doc(id))
}

func fromSnapshot(collection, id string, snap *firestore.DocumentSnapshot, err error) (*docstore.Document, error) {
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if !snap.Exists() {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return &docstore.Document{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

func toDocuments(snaps []*firestore.DocumentSnapshot) []docstore.Document {
	docs := make([]docstore.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, docstore.Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs
}

type whereClause struct {
	path  string
	op    string
	value any
}

func whereClauses(filters []docstore.Filter) ([]whereClause, error) {
	clauses := make([]whereClause, 0, len(filters))
	for _, f := range filters {
		var op string
		switch f.Op {
		case docstore.OpEqual:
			op = "=="
		case docstore.OpArrayContains:
			op = "array-contains"
		default:
			return nil, fmt.Errorf("unsupported filter operator %q on %s", f.Op, f.Field)
		}
		clauses = append(clauses, whereClause{path: f.Field, op: op, value: f.Value})
	}
	return clauses, nil
}

func applyFilters(query firestore.Query, filters []docstore.Filter) (firestore.Query, error) {
	clauses, err := whereClauses(filters)
	if err != nil {
		return query, err
	}
	for _, c := range clauses {
		query = query.Where(c.path, c.op, c.value)
	}
	return query, nil
}

// toUpdates uses single-element field paths so keys are never split on dots
func toUpdates(fields docstore.Fields) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	return updates
}
