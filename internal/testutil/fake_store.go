// Package testutil provides testing utilities for the item service.
package testutil

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/item-service/pkg/item"
	"github.com/Sternrassler/item-service/pkg/store"
)

// FakeStore is an in-memory store with per-ID fault injection.
type FakeStore struct {
	inner *store.MemoryStore

	mu         sync.RWMutex
	listIDs    []int64
	findDelays map[int64]time.Duration
	findErrs   map[int64]error
	saveErrs   map[int64]error
	findPanics map[int64]any

	// Tracking
	findCalls map[int64]int
	saveCalls map[int64]int
	saveOrder []int64
}

// NewFakeStore creates a fake store holding items.
func NewFakeStore(items ...item.Item) *FakeStore {
	f := &FakeStore{
		inner:      store.NewMemoryStore(),
		findDelays: make(map[int64]time.Duration),
		findErrs:   make(map[int64]error),
		saveErrs:   make(map[int64]error),
		findPanics: make(map[int64]any),
		findCalls:  make(map[int64]int),
		saveCalls:  make(map[int64]int),
	}
	for _, it := range items {
		if _, err := f.inner.Save(context.Background(), it); err != nil {
			panic(err)
		}
	}
	return f
}

// SetListIDs makes ListIDs return ids instead of the stored IDs.
func (f *FakeStore) SetListIDs(ids ...int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listIDs = append([]int64(nil), ids...)
}

// SetFindDelay delays FindByID for id. The delay honours ctx.
func (f *FakeStore) SetFindDelay(id int64, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findDelays[id] = d
}

// FailFind makes FindByID for id return err.
func (f *FakeStore) FailFind(id int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findErrs[id] = err
}

// FailSave makes Save for id return err.
func (f *FakeStore) FailSave(id int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErrs[id] = err
}

// PanicOnFind makes FindByID for id panic with v.
func (f *FakeStore) PanicOnFind(id int64, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findPanics[id] = v
}

// FindCalls returns how often FindByID was called for id.
func (f *FakeStore) FindCalls(id int64) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.findCalls[id]
}

// SaveCalls returns how often Save was called for id.
func (f *FakeStore) SaveCalls(id int64) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.saveCalls[id]
}

// SaveOrder returns the IDs in the order their saves completed.
func (f *FakeStore) SaveOrder() []int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]int64(nil), f.saveOrder...)
}

// ListIDs returns the override set by SetListIDs, or the stored IDs.
func (f *FakeStore) ListIDs(ctx context.Context) ([]int64, error) {
	f.mu.RLock()
	override := f.listIDs
	f.mu.RUnlock()

	if override != nil {
		return append([]int64(nil), override...), nil
	}
	return f.inner.ListIDs(ctx)
}

// FindByID applies the configured delay, panic or error before delegating.
func (f *FakeStore) FindByID(ctx context.Context, id int64) (item.Item, error) {
	f.mu.Lock()
	f.findCalls[id]++
	delay := f.findDelays[id]
	err := f.findErrs[id]
	panicValue, shouldPanic := f.findPanics[id]
	f.mu.Unlock()

	if shouldPanic {
		panic(panicValue)
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return item.Item{}, ctx.Err()
		}
	}

	if err != nil {
		return item.Item{}, err
	}
	return f.inner.FindByID(ctx, id)
}

// FindAll delegates to the inner store.
func (f *FakeStore) FindAll(ctx context.Context) ([]item.Item, error) {
	return f.inner.FindAll(ctx)
}

// Save returns the configured error for it.ID, or stores it.
func (f *FakeStore) Save(ctx context.Context, it item.Item) (item.Item, error) {
	f.mu.Lock()
	f.saveCalls[it.ID]++
	err := f.saveErrs[it.ID]
	f.mu.Unlock()

	if err != nil {
		return item.Item{}, err
	}

	saved, err := f.inner.Save(ctx, it)
	if err != nil {
		return item.Item{}, err
	}

	f.mu.Lock()
	f.saveOrder = append(f.saveOrder, saved.ID)
	f.mu.Unlock()
	return saved, nil
}

// DeleteByID delegates to the inner store.
func (f *FakeStore) DeleteByID(ctx context.Context, id int64) error {
	return f.inner.DeleteByID(ctx, id)
}

// Items builds n items with IDs 1..n and status "PENDING".
func Items(n int) []item.Item {
	items := make([]item.Item, n)
	for i := range items {
		id := int64(i + 1)
		items[i] = item.Item{
			ID:          id,
			Name:        "Item " + strconv.FormatInt(id, 10),
			Description: "desc",
			Status:      "PENDING",
			Email:       "item" + strconv.FormatInt(id, 10) + "@example.com",
		}
	}
	return items
}
