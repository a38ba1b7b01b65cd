package postgres

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakechorley/hope-hub/pkg/docstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is a docstore.Store backed by a single PostgreSQL JSONB table
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates a new PostgreSQL database connection
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// RunMigrations executes all pending SQL migration files in order.
// It tracks which migrations have been applied in a schema_migrations table.
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	rows, err := db.pool.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration filename: %w", err)
		}
		applied[filename] = true
	}
	rows.Close()

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		if applied[filename] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", filename, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (db *DB) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	return get(ctx, db.pool, collection, id, false)
}

func (db *DB) List(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	return list(ctx, db.pool, collection, filters)
}

func (db *DB) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := uuid.New().String()
	data, err := encode(fields)
	if err != nil {
		return "", err
	}
	_, err = db.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
	`, collection, id, data)
	if err != nil {
		return "", fmt.Errorf("failed to insert %s document: %w", collection, err)
	}
	return id, nil
}

func (db *DB) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return set(ctx, db.pool, collection, id, fields)
}

func (db *DB) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return update(ctx, db.pool, collection, id, fields)
}

func (db *DB) Delete(ctx context.Context, collection, id string) error {
	return remove(ctx, db.pool, collection, id)
}

// RunTransaction runs fn inside a database transaction. Documents read
// through the transaction are locked until it commits.
func (db *DB) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{ctx: ctx, tx: tx})
	})
}

type pgTx struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *pgTx) Get(collection, id string) (*docstore.Document, error) {
	return get(t.ctx, t.tx, collection, id, true)
}

func (t *pgTx) List(collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	return list(t.ctx, t.tx, collection, filters)
}

func (t *pgTx) Set(collection, id string, fields docstore.Fields) error {
	return set(t.ctx, t.tx, collection, id, fields)
}

func (t *pgTx) Update(collection, id string, fields docstore.Fields) error {
	return update(t.ctx, t.tx, collection, id, fields)
}

func (t *pgTx) Delete(collection, id string) error {
	return remove(t.ctx, t.tx, collection, id)
}

func get(ctx context.Context, q querier, collection, id string, forUpdate bool) (*docstore.Document, error) {
	sql := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	var raw []byte
	if err := q.QueryRow(ctx, sql, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query %s/%s: %w", collection, id, err)
	}

	fields, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return &docstore.Document{ID: id, Fields: fields}, nil
}

func list(ctx context.Context, q querier, collection string, filters []docstore.Filter) ([]docstore.Document, error) {
	where, args, err := filterClause(collection, filters)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT id, data FROM documents WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s documents: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		fields, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s documents: %w", collection, err)
	}

	return docs, nil
}

func set(ctx context.Context, q querier, collection, id string, fields docstore.Fields) error {
	data, err := encode(fields)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func update(ctx context.Context, q querier, collection, id string, fields docstore.Fields) error {
	data, err := encode(fields)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return nil
}

func remove(ctx context.Context, q querier, collection, id string) error {
	_, err := q.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// filterClause turns filters into JSONB containment checks, which cover both
// equality ({"f": v}) and array membership ({"f": [v]})
func filterClause(collection string, filters []docstore.Filter) (string, []any, error) {
	clauses := []string{"collection = $1"}
	args := []any{collection}

	for _, f := range filters {
		var containment map[string]any
		switch f.Op {
		case docstore.OpEqual:
			containment = map[string]any{f.Field: f.Value}
		case docstore.OpArrayContains:
			containment = map[string]any{f.Field: []any{f.Value}}
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
		data, err := json.Marshal(containment)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode filter on %s: %w", f.Field, err)
		}
		args = append(args, string(data))
		clauses = append(clauses, fmt.Sprintf("data @> $%d::jsonb", len(args)))
	}

	return strings.Join(clauses, " AND "), args, nil
}

func encode(fields docstore.Fields) (string, error) {
	if fields == nil {
		fields = docstore.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(data), nil
}

// decode keeps numbers as json.Number so integer fields survive the round trip
func decode(raw []byte) (docstore.Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields docstore.Fields
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
