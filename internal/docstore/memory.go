package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
}

type memoryDoc struct {
	fields    json.RawMessage
	updatedAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]memoryDoc),
	}
}

// Collection returns a handle for the named collection.
func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *memoryCollection) Get(_ context.Context, id string) (json.RawMessage, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	doc, ok := c.store.collections[c.name][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.fields, nil
}

func (c *memoryCollection) Set(_ context.Context, id string, doc any) error {
	fields, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", c.name, id, err)
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	coll, ok := c.store.collections[c.name]
	if !ok {
		coll = make(map[string]memoryDoc)
		c.store.collections[c.name] = coll
	}
	coll[id] = memoryDoc{fields: fields, updatedAt: time.Now().UTC()}
	return nil
}

func (c *memoryCollection) Delete(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	delete(c.store.collections[c.name], id)
	return nil
}

func (c *memoryCollection) Query(_ context.Context, field, value string) ([]json.RawMessage, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var docs []json.RawMessage
	for _, doc := range c.store.collections[c.name] {
		var fields map[string]any
		if err := json.Unmarshal(doc.fields, &fields); err != nil {
			continue
		}
		if v, ok := fields[field].(string); ok && v == value {
			docs = append(docs, doc.fields)
		}
	}
	return docs, nil
}

func (c *memoryCollection) All(_ context.Context) ([]json.RawMessage, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var docs []json.RawMessage
	for _, doc := range c.store.collections[c.name] {
		docs = append(docs, doc.fields)
	}
	return docs, nil
}

func (c *memoryCollection) StaleIDs(_ context.Context, cutoff time.Time, limit int) ([]string, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	type stale struct {
		id        string
		updatedAt time.Time
	}
	var found []stale
	for id, doc := range c.store.collections[c.name] {
		if doc.updatedAt.Before(cutoff) {
			found = append(found, stale{id: id, updatedAt: doc.updatedAt})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].updatedAt.Before(found[j].updatedAt) })

	if len(found) > limit {
		found = found[:limit]
	}
	ids := make([]string, 0, len(found))
	for _, s := range found {
		ids = append(ids, s.id)
	}
	return ids, nil
}
