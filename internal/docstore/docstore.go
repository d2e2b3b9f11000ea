// Package docstore provides document-oriented storage over SQLite.
//
// Documents are JSON blobs grouped into named collections and addressed by an
// opaque id, with field-equality queries served by json_extract. It is the
// single persistence collaborator for sessions, user profiles, auth records
// and generated menus.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no document exists for the given id.
var ErrNotFound = errors.New("document not found")

// Collection provides access to the documents of a single collection.
type Collection interface {
	// Get returns the raw JSON fields of a document, or ErrNotFound.
	Get(ctx context.Context, id string) (json.RawMessage, error)

	// Set upserts a document, marshaling doc to JSON and stamping the
	// record's updated_at to now.
	Set(ctx context.Context, id string, doc any) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// Query returns the raw JSON fields of all documents whose top-level
	// field equals value.
	Query(ctx context.Context, field, value string) ([]json.RawMessage, error)

	// All returns the raw JSON fields of every document in the collection.
	All(ctx context.Context) ([]json.RawMessage, error)

	// StaleIDs returns the ids of up to limit documents whose record
	// updated_at is older than cutoff.
	StaleIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// Store groups collections by name.
type Store interface {
	Collection(name string) Collection
}
