package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Sternrassler/item-service/pkg/item"
)

const backendMemory = "memory"

// MemoryStore is an in-process Store guarded by a RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]item.Item
	lastID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[int64]item.Item),
	}
}

// ListIDs returns a snapshot of all IDs in ascending order.
func (s *MemoryStore) ListIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	StoreOperations.WithLabelValues(backendMemory, "list_ids").Inc()

	s.mu.RLock()
	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// FindByID returns a copy of the stored item.
func (s *MemoryStore) FindByID(ctx context.Context, id int64) (item.Item, error) {
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}
	StoreOperations.WithLabelValues(backendMemory, "find").Inc()

	s.mu.RLock()
	it, ok := s.items[id]
	s.mu.RUnlock()

	if !ok {
		return item.Item{}, ErrNotFound
	}
	return it, nil
}

// FindAll returns every item in ascending ID order.
func (s *MemoryStore) FindAll(ctx context.Context) ([]item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	StoreOperations.WithLabelValues(backendMemory, "find_all").Inc()

	s.mu.RLock()
	all := make([]item.Item, 0, len(s.items))
	for _, it := range s.items {
		all = append(all, it)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// Save stores a copy of it, assigning an ID when it has none.
func (s *MemoryStore) Save(ctx context.Context, it item.Item) (item.Item, error) {
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}
	StoreOperations.WithLabelValues(backendMemory, "save").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	if it.ID == 0 {
		s.lastID++
		it.ID = s.lastID
	} else if it.ID > s.lastID {
		// IDs are never reused, including explicit ones
		s.lastID = it.ID
	}

	s.items[it.ID] = it
	return it, nil
}

// DeleteByID removes the item with the given ID.
func (s *MemoryStore) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	StoreOperations.WithLabelValues(backendMemory, "delete").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}
