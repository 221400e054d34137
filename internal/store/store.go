// Package store provides the document store the application persists through.
// Documents are JSON blobs grouped into named collections; ownership of all
// entities stays with the store and the application holds only transient,
// re-fetchable copies. Concurrent writers are last-write-wins — no locking
// discipline is layered on top.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a document does not exist in its collection.
var ErrNotFound = errors.New("document not found")

// Document is one stored record.
type Document struct {
	ID        string
	Data      json.RawMessage
	UpdatedAt time.Time
}

// Decode unmarshals the document body into v.
func (d *Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// DocumentStore is the persistence contract consumed by the core services.
type DocumentStore interface {
	// GetAll returns every document in a collection, ordered by ID.
	GetAll(ctx context.Context, collection string) ([]Document, error)

	// Get returns a single document, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Create inserts a new document. data is JSON-marshalled.
	Create(ctx context.Context, collection, id string, data any) error

	// Update replaces an existing document's body, or returns ErrNotFound.
	Update(ctx context.Context, collection, id string, data any) error

	// Delete removes a document, or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}

// DecodeAll unmarshals a whole collection into a slice of T, skipping nothing:
// a decode failure fails the call so callers can distinguish corrupt storage
// from domain-level malformed records.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i := range docs {
		var v T
		if err := docs[i].Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
