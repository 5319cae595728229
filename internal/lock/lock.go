// Package lock serializes read-modify-write cycles on collections. Keys are
// always acquired in sorted order so two operations touching overlapping
// collections cannot deadlock.
package lock

import (
	"context"
	"slices"
	"sync"
)

type Locker interface {
	// Lock blocks until every key is held or ctx is done. The returned
	// function releases all keys.
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// Local guards keys within a single process.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}

	return s
}

func (l *Local) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = ordered(keys)
	held := make([]chan struct{}, 0, len(keys))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, k := range keys {
		s := l.slot(k)

		select {
		case s <- struct{}{}:
			held = append(held, s)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	return release, nil
}

func ordered(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)

	return slices.Compact(out)
}
