package registry

import (
	"sort"
	"sync"

	"github.com/arthur-debert/dotmod/pkg/errors"
)

// Table is a thread-safe name-keyed collection
type Table[T any] struct {
	mu    sync.RWMutex
	kind  string
	items map[string]T
}

// NewTable creates an empty table. kind names the items in error messages.
func NewTable[T any](kind string) *Table[T] {
	return &Table[T]{kind: kind, items: make(map[string]T)}
}

// Add inserts an item. Names must be non-empty and unique.
func (t *Table[T]) Add(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", t.kind)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "%s %q is already defined", t.kind, name).
			WithDetail(t.kind, name)
	}
	t.items[name] = item
	return nil
}

// Get returns the named item or a NOT_FOUND error
func (t *Table[T]) Get(name string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, exists := t.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "unknown %s %q", t.kind, name).
			WithDetail(t.kind, name)
	}
	return item, nil
}

// Has reports whether name is present
func (t *Table[T]) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, exists := t.items[name]
	return exists
}

// Names returns all names in sorted order
func (t *Table[T]) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.items))
	for name := range t.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of items
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.items)
}
