package memory

import (
	"context"
	"sync"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/storage"
)

// CatalogStore is an in-memory implementation of storage.CatalogStore.
// The catalog is immutable, so the stored pointer is shared with readers.
type CatalogStore struct {
	mu  sync.RWMutex
	cat *catalog.Catalog
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// SaveCatalog replaces the stored catalog.
func (s *CatalogStore) SaveCatalog(_ context.Context, c *catalog.Catalog) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cat = c
	return nil
}

// LoadCatalog returns the stored catalog, or an empty one.
func (s *CatalogStore) LoadCatalog(_ context.Context) (*catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cat == nil {
		return catalog.New(nil, nil, nil, nil)
	}
	return s.cat, nil
}

// Compile-time interface check.
var _ storage.CatalogStore = (*CatalogStore)(nil)
