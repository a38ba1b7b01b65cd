package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// Fault is consulted before every operation. Returning an error makes the operation fail.
// op is one of "get", "list", "create", "set", "update", "delete".
type Fault func(op, collection, id string) error

// Store is an in-memory docstore.Store. Transactions hold the store lock and
// work on a staged copy, so a failing transaction leaves no trace.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]docstore.Fields
	fault       Fault
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]docstore.Fields),
	}
}

// InjectFault installs f, replacing any previous fault. Pass nil to clear.
func (s *Store) InjectFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

func (s *Store) check(op, collection, id string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op, collection, id)
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{store: s, data: s.collections}).Get(collection, id)
}

func (s *Store) List(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{store: s, data: s.collections}).List(collection, filters...)
}

func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("create", collection, id); err != nil {
		return "", err
	}
	v := &view{store: s, data: s.collections}
	v.put(collection, id, docstore.Clone(fields))
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{store: s, data: s.collections}).Set(collection, id, fields)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{store: s, data: s.collections}).Update(collection, id, fields)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{store: s, data: s.collections}).Delete(collection, id)
}

// RunTransaction stages every write on a copy of the data and swaps it in only if fn succeeds
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &view{store: s, data: copyCollections(s.collections)}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.collections = staged.data
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Count returns the number of documents in a collection
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

// view implements the store operations over one copy of the data.
// Callers hold the store lock.
type view struct {
	store *Store
	data  map[string]map[string]docstore.Fields
}

func (v *view) put(collection, id string, fields docstore.Fields) {
	docs, ok := v.data[collection]
	if !ok {
		docs = make(map[string]docstore.Fields)
		v.data[collection] = docs
	}
	docs[id] = fields
}

func (v *view) Get(collection, id string) (*docstore.Document, error) {
	if err := v.store.check("get", collection, id); err != nil {
		return nil, err
	}
	fields, ok := v.data[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return &docstore.Document{ID: id, Fields: docstore.Clone(fields)}, nil
}

func (v *view) List(collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	if err := v.store.check("list", collection, ""); err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, 0, len(v.data[collection]))
	for id, fields := range v.data[collection] {
		if !docstore.Matches(fields, filters...) {
			continue
		}
		docs = append(docs, docstore.Document{ID: id, Fields: docstore.Clone(fields)})
	}
	// Map iteration order is random; keep listings stable
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (v *view) Set(collection, id string, fields docstore.Fields) error {
	if err := v.store.check("set", collection, id); err != nil {
		return err
	}
	v.put(collection, id, docstore.Clone(fields))
	return nil
}

func (v *view) Update(collection, id string, fields docstore.Fields) error {
	if err := v.store.check("update", collection, id); err != nil {
		return err
	}
	existing, ok := v.data[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	merged := docstore.Clone(existing)
	for k, val := range docstore.Clone(fields) {
		merged[k] = val
	}
	v.put(collection, id, merged)
	return nil
}

func (v *view) Delete(collection, id string) error {
	if err := v.store.check("delete", collection, id); err != nil {
		return err
	}
	delete(v.data[collection], id)
	return nil
}

func copyCollections(src map[string]map[string]docstore.Fields) map[string]map[string]docstore.Fields {
	dst := make(map[string]map[string]docstore.Fields, len(src))
	for name, docs := range src {
		copied := make(map[string]docstore.Fields, len(docs))
		for id, fields := range docs {
			copied[id] = docstore.Clone(fields)
		}
		dst[name] = copied
	}
	return dst
}
