package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteStore implements Store on top of the documents table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore with an existing database connection.
// The documents table is created by the embedded migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Collection returns a handle for the named collection.
func (s *SQLiteStore) Collection(name string) Collection {
	return &sqliteCollection{db: s.db, name: name}
}

type sqliteCollection struct {
	db   *sql.DB
	name string
}

func (c *sqliteCollection) Get(ctx context.Context, id string) (json.RawMessage, error) {
	var fields string
	err := c.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND doc_id = ?`,
		c.name, id,
	).Scan(&fields)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", c.name, id, err)
	}
	return json.RawMessage(fields), nil
}

func (c *sqliteCollection) Set(ctx context.Context, id string, doc any) error {
	fields, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", c.name, id, err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_id, fields, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, doc_id)
		 DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		c.name, id, string(fields), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *sqliteCollection) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND doc_id = ?`,
		c.name, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *sqliteCollection) Query(ctx context.Context, field, value string) ([]json.RawMessage, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT fields FROM documents
		 WHERE collection = ? AND json_extract(fields, '$.' || ?) = ?`,
		c.name, field, value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", c.name, field, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, json.RawMessage(fields))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func (c *sqliteCollection) All(ctx context.Context) ([]json.RawMessage, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT fields FROM documents WHERE collection = ?`,
		c.name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.name, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, json.RawMessage(fields))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func (c *sqliteCollection) StaleIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT doc_id FROM documents
		 WHERE collection = ? AND updated_at < ?
		 ORDER BY updated_at ASC LIMIT ?`,
		c.name, cutoff.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale documents in %s: %w", c.name, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document ids: %w", err)
	}
	return ids, nil
}
