package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// Fields holds the top-level fields of a document
type Fields map[string]any

// Document is a single stored record
type Document struct {
	ID     string
	Fields Fields
}

// Op is a filter operator
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

// Filter restricts a List call to documents whose field matches a value
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq matches documents whose field equals value
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// ArrayContains matches documents whose array field has an element equal to value
func ArrayContains(field string, value any) Filter {
	return Filter{Field: field, Op: OpArrayContains, Value: value}
}

// Store is a collection/id keyed document store.
// Collections may be nested using slash separated paths, e.g. "conversations/c1/messages".
type Store interface {
	// Get returns ErrNotFound if the document does not exist
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Create stores a new document under a generated id and returns the id
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Set creates or replaces the document with the given id
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Update merges top-level fields into an existing document, returning ErrNotFound if it does not exist
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	// RunTransaction runs fn atomically. Writes made through tx are applied
	// together when fn returns nil and discarded when it returns an error.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// Tx is the view of the store inside a transaction.
// Backends that require it (Firestore) expect all reads before any write.
type Tx interface {
	Get(collection, id string) (*Document, error)
	List(collection string, filters ...Filter) ([]Document, error)
	Set(collection, id string, fields Fields) error
	Update(collection, id string, fields Fields) error
	Delete(collection, id string) error
}

// WriteKind identifies the kind of a batched write
type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteUpdate
	WriteDelete
)

// Write is a single operation in an atomic batch
type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Fields     Fields
}

// SetOp returns a batched Set
func SetOp(collection, id string, fields Fields) Write {
	return Write{Kind: WriteSet, Collection: collection, ID: id, Fields: fields}
}

// UpdateOp returns a batched Update
func UpdateOp(collection, id string, fields Fields) Write {
	return Write{Kind: WriteUpdate, Collection: collection, ID: id, Fields: fields}
}

// DeleteOp returns a batched Delete
func DeleteOp(collection, id string) Write {
	return Write{Kind: WriteDelete, Collection: collection, ID: id}
}

// Commit applies all writes atomically: either every write is applied or none is
func Commit(ctx context.Context, store Store, writes ...Write) error {
	if len(writes) == 0 {
		return nil
	}
	return store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return Apply(tx, writes...)
	})
}

// Apply performs writes against a transaction in order
func Apply(tx Tx, writes ...Write) error {
	for _, w := range writes {
		var err error
		switch w.Kind {
		case WriteSet:
			err = tx.Set(w.Collection, w.ID, w.Fields)
		case WriteUpdate:
			err = tx.Update(w.Collection, w.ID, w.Fields)
		case WriteDelete:
			err = tx.Delete(w.Collection, w.ID)
		default:
			err = fmt.Errorf("unknown write kind %d", w.Kind)
		}
		if err != nil {
			return fmt.Errorf("failed to apply write to %s/%s: %w", w.Collection, w.ID, err)
		}
	}
	return nil
}

// SubCollection returns the path of a collection nested under a document
func SubCollection(collection, id, sub string) string {
	return strings.Join([]string{collection, id, sub}, "/")
}

// Matches reports whether fields satisfy every filter
func Matches(fields Fields, filters ...Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case OpEqual:
			if !ValuesEqual(v, f.Value) {
				return false
			}
		case OpArrayContains:
			if !arrayContains(v, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func arrayContains(array, value any) bool {
	rv := reflect.ValueOf(array)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if ValuesEqual(rv.Index(i).Interface(), value) {
			return true
		}
	}
	return false
}

// ValuesEqual compares two field values, treating all numeric types as numbers
func ValuesEqual(a, b any) bool {
	if an, ok := toFloat(a); ok {
		bn, ok := toFloat(b)
		return ok && an == bn
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Clone returns a deep copy of fields so callers cannot alias stored data
func Clone(fields Fields) Fields {
	if fields == nil {
		return nil
	}
	out := make(Fields, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Fields:
		return map[string]any(Clone(t))
	case map[string]any:
		return map[string]any(Clone(Fields(t)))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
