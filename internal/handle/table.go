// Package handle maps opaque integer handles to the driver objects they
// stand for.
package handle

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrUnknownHandle is returned for a handle the table never issued or has
// already released.
var ErrUnknownHandle = errors.New("unknown handle")

// Table issues handles of type H for values of type T. Handles start at 1
// and are never reused, so zero always means "not created".
type Table[H ~uint64, T any] struct {
	mu     sync.Mutex
	kind   string
	next   H
	values map[H]T
}

func NewTable[H ~uint64, T any](kind string) *Table[H, T] {
	return &Table[H, T]{
		kind:   kind,
		values: make(map[H]T),
	}
}

// Add stores v and returns its new handle.
func (t *Table[H, T]) Add(v T) H {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.values[t.next] = v
	return t.next
}

func (t *Table[H, T]) Get(h H) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.values[h]
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrUnknownHandle, "%s %d", t.kind, uint64(h))
	}
	return v, nil
}

// Remove releases h and returns the value it stood for. The second result
// is false if h was not live.
func (t *Table[H, T]) Remove(h H) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.values[h]
	delete(t.values, h)
	return v, ok
}

// Live returns the number of handles not yet removed.
func (t *Table[H, T]) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.values)
}

func (t *Table[H, T]) Kind() string {
	return t.kind
}
