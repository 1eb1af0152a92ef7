// Package hostlib provides the shared plumbing for host utility
// namespaces: an opaque handle table and guest memory helpers. The
// concrete namespaces live in the plot, array and table subpackages.
package hostlib

import (
	"sync"

	"github.com/tetratelabs/wazero/api"
)

// Handle is an opaque reference into a host-side table. Handle 0 is
// reserved and always invalid.
type Handle = uint32

// Table maps handles to host values of one type. It is safe for
// concurrent use.
type Table[T any] struct {
	mu    sync.Mutex
	next  Handle
	items map[Handle]T
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[Handle]T)}
}

// Insert stores a value and returns its handle.
func (t *Table[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.items[t.next] = v
	return t.next
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	return v, ok
}

// Remove drops a value and returns it.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	if ok {
		delete(t.items, h)
	}
	return v, ok
}

func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Clear drops every value.
func (t *Table[T]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.items)
}

// ReadString reads a guest string from linear memory. Host functions
// receive strings as (ptr, len) pairs.
func ReadString(mod api.Module, ptr, length uint32) (string, bool) {
	if length == 0 {
		return "", true
	}
	b, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return "", false
	}
	return string(b), true
}
