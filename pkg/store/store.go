// Package store provides item persistence backends: an in-memory store
// for tests and single-process use, and a Redis-backed store.
package store

import (
	"context"
	"errors"

	"github.com/Sternrassler/item-service/pkg/item"
)

// ErrNotFound indicates the requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Store is the persistence contract used by the CRUD paths and the batch engine.
//
// Implementations must be safe for concurrent use. FindByID may be called
// concurrently for distinct IDs, and concurrent Saves of the same ID must be
// serialized by the implementation.
type Store interface {
	// ListIDs returns a snapshot of all known IDs in ascending order.
	ListIDs(ctx context.Context) ([]int64, error)

	// FindByID returns ErrNotFound if the item does not exist.
	FindByID(ctx context.Context, id int64) (item.Item, error)

	// FindAll returns every item in ascending ID order.
	FindAll(ctx context.Context) ([]item.Item, error)

	// Save persists it. A zero ID is replaced by a newly assigned one.
	Save(ctx context.Context, it item.Item) (item.Item, error)

	// DeleteByID returns ErrNotFound if the item does not exist.
	DeleteByID(ctx context.Context, id int64) error
}
