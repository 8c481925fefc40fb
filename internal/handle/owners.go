package handle

import (
	"slices"
	"sync"
)

// Owners records which parent object each child handle was allocated from,
// for children the driver frees implicitly when the parent is destroyed
// (command buffers with their pool).
type Owners[P, C ~uint64] struct {
	mu       sync.Mutex
	parent   map[C]P
	children map[P]map[C]struct{}
}

func NewOwners[P, C ~uint64]() *Owners[P, C] {
	return &Owners[P, C]{
		parent:   make(map[C]P),
		children: make(map[P]map[C]struct{}),
	}
}

func (o *Owners[P, C]) Track(parent P, child C) {
	o.mu.Lock()
	defer o.mu.Unlock()

	set, ok := o.children[parent]
	if !ok {
		set = make(map[C]struct{})
		o.children[parent] = set
	}
	set[child] = struct{}{}
	o.parent[child] = parent
}

// Untrack forgets a child that was released on its own.
func (o *Owners[P, C]) Untrack(child C) {
	o.mu.Lock()
	defer o.mu.Unlock()

	parent, ok := o.parent[child]
	if !ok {
		return
	}
	delete(o.parent, child)
	delete(o.children[parent], child)
	if len(o.children[parent]) == 0 {
		delete(o.children, parent)
	}
}

// Release forgets parent and returns its remaining children in ascending
// order.
func (o *Owners[P, C]) Release(parent P) []C {
	o.mu.Lock()
	defer o.mu.Unlock()

	set := o.children[parent]
	delete(o.children, parent)

	children := make([]C, 0, len(set))
	for child := range set {
		delete(o.parent, child)
		children = append(children, child)
	}
	slices.Sort(children)
	return children
}
