package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"cad-editor/internal/cad/models"
)

// ============================================================
// SQL Repository
// ============================================================

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// SQLStore keeps documents in four tables. Layers, entities and blocks are
// stored one row each with their full record as JSON, in document order.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
        name TEXT PRIMARY KEY,
        version TEXT NOT NULL,
        units INTEGER NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS layers (
        document TEXT NOT NULL REFERENCES documents(name) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        name TEXT NOT NULL,
        payload TEXT NOT NULL,
        PRIMARY KEY (document, position)
    )`,
	`CREATE TABLE IF NOT EXISTS entities (
        document TEXT NOT NULL REFERENCES documents(name) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        handle TEXT NOT NULL,
        type TEXT NOT NULL,
        layer TEXT NOT NULL,
        payload TEXT NOT NULL,
        PRIMARY KEY (document, position)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_entities_layer ON entities(document, layer)`,
	`CREATE TABLE IF NOT EXISTS blocks (
        document TEXT NOT NULL REFERENCES documents(name) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        name TEXT NOT NULL,
        payload TEXT NOT NULL,
        PRIMARY KEY (document, position)
    )`,
}

// Init создаёт таблицы, если их ещё нет.
func (s *SQLStore) Init(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Load(ctx context.Context, name string) (*models.Document, error) {
	doc := &models.Document{}
	row := s.db.QueryRowContext(ctx, s.rebind(`
        SELECT version, units FROM documents WHERE name = ?
    `), name)
	if err := row.Scan(&doc.Version, &doc.Units); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("load document: %w", err)
	}

	var err error
	if doc.Layers, err = loadRows[models.Layer](ctx, s, "layers", name); err != nil {
		return nil, err
	}
	if doc.Entities, err = loadRows[models.Entity](ctx, s, "entities", name); err != nil {
		return nil, err
	}
	if doc.Blocks, err = loadRows[models.Block](ctx, s, "blocks", name); err != nil {
		return nil, err
	}
	if len(doc.Blocks) == 0 {
		doc.Blocks = nil
	}
	return doc, nil
}

func loadRows[T any](ctx context.Context, s *SQLStore, table, name string) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		"SELECT payload FROM "+table+" WHERE document = ? ORDER BY position"), name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	return out, nil
}

// Save replaces the stored document in a single transaction.
func (s *SQLStore) Save(ctx context.Context, name string, doc *models.Document) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"layers", "entities", "blocks"} {
		if _, err = tx.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE document = ?"), name); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	_, err = tx.ExecContext(ctx, s.rebind(`
        INSERT INTO documents (name, version, units, updated_at) VALUES (?, ?, ?, ?)
        ON CONFLICT (name) DO UPDATE SET version = excluded.version, units = excluded.units, updated_at = excluded.updated_at
    `), name, doc.Version, doc.Units, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	for i, l := range doc.Layers {
		if err = s.insert(ctx, tx, "INSERT INTO layers (document, position, name, payload) VALUES (?, ?, ?, ?)",
			l, name, i, l.Name); err != nil {
			return fmt.Errorf("insert layer %s: %w", l.Name, err)
		}
	}
	for i, e := range doc.Entities {
		if err = s.insert(ctx, tx, "INSERT INTO entities (document, position, handle, type, layer, payload) VALUES (?, ?, ?, ?, ?, ?)",
			e, name, i, e.Handle, e.Type, e.Layer); err != nil {
			return fmt.Errorf("insert entity %s: %w", e.Handle, err)
		}
	}
	for i, b := range doc.Blocks {
		if err = s.insert(ctx, tx, "INSERT INTO blocks (document, position, name, payload) VALUES (?, ?, ?, ?)",
			b, name, i, b.Name); err != nil {
			return fmt.Errorf("insert block %s: %w", b.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// insert appends the JSON payload of v as the last query argument.
func (s *SQLStore) insert(ctx context.Context, tx *sql.Tx, query string, v any, args ...any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, s.rebind(query), append(args, string(payload))...)
	return err
}

// rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ============================================================
// Connections
// ============================================================

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}
