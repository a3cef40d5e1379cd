package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection   TEXT        NOT NULL,
	id           TEXT        NOT NULL,
	data         JSONB       NOT NULL DEFAULT '{}'::jsonb,
	last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection_updated
	ON documents (collection, last_updated DESC, id);
`

// DocumentStore keeps every collection in one Postgres JSONB table.
// The id lives in its own column and is stripped from data.
type DocumentStore struct {
	db *sqlx.DB
}

// NewDocumentStore wraps an open connection
func NewDocumentStore(db *sqlx.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

func (r documentRow) decode(c Collection) (Document, error) {
	doc := Document{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &doc); err != nil {
			return nil, storageErr("decode", c, err)
		}
	}
	doc[FieldID] = r.ID
	return doc, nil
}

// EnsureSchema creates the documents table when missing
func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, documentsSchema); err != nil {
		return storageErr("schema", "", err)
	}
	return nil
}

// List returns all records of a collection, newest first
func (s *DocumentStore) List(ctx context.Context, c Collection) ([]Document, error) {
	query := `
		SELECT id, data
		FROM documents
		WHERE collection = $1
		ORDER BY last_updated DESC, id ASC
	`

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, string(c)); err != nil {
		return nil, storageErr("list", c, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.decode(c)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get returns one record
func (s *DocumentStore) Get(ctx context.Context, c Collection, id string) (Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`

	var row documentRow
	err := s.db.GetContext(ctx, &row, query, string(c), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", c, err)
	}
	return row.decode(c)
}

// Create inserts a new record
func (s *DocumentStore) Create(ctx context.Context, c Collection, id string, data Document) (Document, error) {
	doc := data.withoutID()
	ts := stamp(doc)

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, storageErr("encode", c, err)
	}

	query := `
		INSERT INTO documents (collection, id, data, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, string(c), id, payload, ts)
	if err != nil {
		return nil, storageErr("create", c, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("create", c, err)
	}
	if affected == 0 {
		return nil, ErrAlreadyExists
	}

	doc[FieldID] = id
	return doc, nil
}

// Update merges patch into the stored JSON in a single statement
func (s *DocumentStore) Update(ctx context.Context, c Collection, id string, patch Document) (Document, error) {
	doc := patch.withoutID()
	ts := stamp(doc)

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, storageErr("encode", c, err)
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, last_updated = $4
		WHERE collection = $1 AND id = $2
		RETURNING id, data
	`

	var row documentRow
	err = s.db.QueryRowxContext(ctx, query, string(c), id, payload, ts).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("update", c, err)
	}
	return row.decode(c)
}

// Delete removes a record if present
func (s *DocumentStore) Delete(ctx context.Context, c Collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, string(c), id); err != nil {
		return storageErr("delete", c, err)
	}
	return nil
}

// SetBatch writes full documents in one transaction. Existing ids are
// overwritten, never merged. Any failure rolls back the whole batch.
func (s *DocumentStore) SetBatch(ctx context.Context, writes []DocumentWrite) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("batch", "", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO documents (collection, id, data, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, last_updated = EXCLUDED.last_updated
	`

	for _, w := range writes {
		doc := w.Data.withoutID()
		ts := w.Data.LastUpdated()
		if ts.IsZero() {
			ts = stamp(doc)
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			return storageErr("encode", w.Collection, err)
		}
		if _, err := tx.ExecContext(ctx, query, string(w.Collection), w.ID, payload, ts); err != nil {
			return storageErr("batch", w.Collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit", "", err)
	}
	return nil
}

// Count returns the number of records in a collection
func (s *DocumentStore) Count(ctx context.Context, c Collection) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM documents WHERE collection = $1`
	if err := s.db.GetContext(ctx, &count, query, string(c)); err != nil {
		return 0, storageErr("count", c, err)
	}
	return count, nil
}

// Clear deletes every record of the given collections
func (s *DocumentStore) Clear(ctx context.Context, collections ...Collection) (int64, error) {
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = string(c)
	}

	query := `DELETE FROM documents WHERE collection = ANY($1)`
	result, err := s.db.ExecContext(ctx, query, pq.Array(names))
	if err != nil {
		return 0, storageErr("clear", "", err)
	}
	return result.RowsAffected()
}

// Ping checks the database connection
func (s *DocumentStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageErr("ping", "", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *DocumentStore) Close() error {
	return s.db.Close()
}
