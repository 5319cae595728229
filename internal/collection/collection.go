// Package collection provides versioned record sets that are read and written
// as a whole. Writers present the revision they read; a save against a newer
// revision is rejected with an apperr conflict instead of overwriting.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
)

// Names of the collections persisted by the service.
const (
	Units   = "units"
	Defects = "defects"
	Batches = "batches"
	Orders  = "orders"
	Sales   = "sales"
	Ledger  = "ledger"
)

// Snapshot is the content of a collection at a given revision.
type Snapshot[T any] struct {
	Items    []T
	Revision int64
}

//go:generate mockgen -source=collection.go -destination=repository_mock.go -package=collection
type Repository[T any] interface {
	Load(ctx context.Context) (Snapshot[T], error)
	// Save replaces the collection if its revision still equals snap.Revision
	// and returns the snapshot at the new revision.
	Save(ctx context.Context, snap Snapshot[T]) (Snapshot[T], error)
}

// Update runs a read-modify-write cycle against repo.
func Update[T any](ctx context.Context, repo Repository[T], fn func(items []T) ([]T, error)) (Snapshot[T], error) {
	snap, err := repo.Load(ctx)
	if err != nil {
		return Snapshot[T]{}, err
	}

	items, err := fn(snap.Items)
	if err != nil {
		return Snapshot[T]{}, err
	}

	return repo.Save(ctx, Snapshot[T]{Items: items, Revision: snap.Revision})
}

// Memory is an in-process Repository. Items are kept serialized so callers
// never share backing arrays with the stored state.
type Memory[T any] struct {
	name string

	mu       sync.Mutex
	payload  []byte
	revision int64
}

func NewMemory[T any](name string) *Memory[T] {
	return &Memory[T]{name: name}
}

// Seed replaces the content without a revision check.
func (m *Memory[T]) Seed(items []T) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", m.name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.payload = payload
	m.revision++

	return nil
}

func (m *Memory[T]) Load(ctx context.Context) (Snapshot[T], error) {
	if err := ctx.Err(); err != nil {
		return Snapshot[T]{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var items []T

	if len(m.payload) > 0 {
		if err := json.Unmarshal(m.payload, &items); err != nil {
			return Snapshot[T]{}, apperr.Persistence("decoding "+m.name, err)
		}
	}

	return Snapshot[T]{Items: items, Revision: m.revision}, nil
}

func (m *Memory[T]) Save(ctx context.Context, snap Snapshot[T]) (Snapshot[T], error) {
	if err := ctx.Err(); err != nil {
		return Snapshot[T]{}, err
	}

	payload, err := json.Marshal(snap.Items)
	if err != nil {
		return Snapshot[T]{}, apperr.Persistence("encoding "+m.name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Revision != m.revision {
		return Snapshot[T]{}, apperr.Conflict(m.name)
	}

	m.payload = payload
	m.revision++

	return Snapshot[T]{Items: snap.Items, Revision: m.revision}, nil
}
