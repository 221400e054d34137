package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process DocumentStore used by tests and local
// development. FailWrites, when set, is consulted before every mutation so
// tests can inject persistence failures for specific documents.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document

	// FailWrites returns a non-nil error to reject a Create/Update/Delete.
	FailWrites func(collection, id string) error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

func (s *MemoryStore) GetAll(_ context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]Document, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) Create(_ context.Context, collection, id string, data any) error {
	if err := s.failWrite(collection, id); err != nil {
		return err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	if _, exists := s.collections[collection][id]; exists {
		return fmt.Errorf("document %s/%s already exists", collection, id)
	}
	s.collections[collection][id] = Document{ID: id, Data: body, UpdatedAt: time.Now()}
	return nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, data any) error {
	if err := s.failWrite(collection, id); err != nil {
		return err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	s.collections[collection][id] = Document{ID: id, Data: body, UpdatedAt: time.Now()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	if err := s.failWrite(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) failWrite(collection, id string) error {
	if s.FailWrites == nil {
		return nil
	}
	return s.FailWrites(collection, id)
}
