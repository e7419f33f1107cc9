// Package memory is an in-process implementation of repository.Store used by
// tests and by local runs with STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

type collection struct {
	docs  map[string]repository.Document
	order []string
}

// Store holds every collection in memory. Documents are copied on the way
// in and out so callers never share maps with the store.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]repository.Document)}
		s.collections[name] = c
	}
	return c
}

// FindAll returns matching documents in insertion order.
func (s *Store) FindAll(_ context.Context, name string, filter repository.Filter) ([]repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []repository.Document{}, nil
	}

	out := make([]repository.Document, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if filter.Match(doc) {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

// FindOne returns the first matching document.
func (s *Store) FindOne(ctx context.Context, name string, filter repository.Filter) (repository.Document, error) {
	docs, err := s.FindAll(ctx, name, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, repository.ErrNotFound
	}
	return docs[0], nil
}

// FindByID looks a document up by id.
func (s *Store) FindByID(_ context.Context, name, id string) (repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doc.Clone(), nil
}

// InsertOne stores doc and returns its id. An id already present on the
// document is kept.
func (s *Store) InsertOne(_ context.Context, name string, doc repository.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := doc.Clone().Normalize()
	id := stored.ID()
	if id == "" {
		id = primitive.NewObjectID().Hex()
		stored[models.FieldID] = id
	}

	c := s.coll(name)
	if _, exists := c.docs[id]; exists {
		return "", fmt.Errorf("insert into %s: duplicate id %s", name, id)
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	return id, nil
}

// UpdateOne sets the given fields on an existing document.
func (s *Store) UpdateOne(_ context.Context, name, id string, set repository.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return repository.ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return repository.ErrNotFound
	}

	updated := doc.Clone()
	for k, v := range set.Clone().Normalize() {
		if k == models.FieldID {
			continue
		}
		updated[k] = v
	}
	c.docs[id] = updated
	return nil
}

// DeleteOne removes a document.
func (s *Store) DeleteOne(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Distinct returns the unique values of field across matching documents,
// in first-seen order. Documents without the field are skipped.
func (s *Store) Distinct(ctx context.Context, name, field string, filter repository.Filter) ([]any, error) {
	docs, err := s.FindAll(ctx, name, filter)
	if err != nil {
		return nil, err
	}

	var values []any
	for _, doc := range docs {
		v, ok := doc[field]
		if !ok {
			continue
		}
		seen := false
		for _, existing := range values {
			same := repository.Filter{field: repository.Eq(existing)}
			if same.Match(repository.Document{field: v}) {
				seen = true
				break
			}
		}
		if !seen {
			values = append(values, v)
		}
	}
	return values, nil
}
