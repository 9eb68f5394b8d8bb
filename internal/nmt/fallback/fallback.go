// Package fallback implements the generic, non-platform-specific core
// used on targets without the kernel and scheduler primitives the
// fast path (internal/nmt/nmtcore) depends on: every operation is
// serialized behind a single mutex. It is deliberately unoptimized —
// original_source/src/generic/mod.rs describes it as the contract the
// fast path must match, not a design to improve on.
package fallback

import (
	"sync"

	"github.com/kolkov/nmt/internal/nmt/cloner"
)

// Inner is a mutex-protected value with the same Get/Set contract as
// nmtcore.Inner, minus any of the performance properties: every Get
// blocks every concurrent Set and vice versa.
type Inner[T any] struct {
	mu     sync.Mutex
	value  T
	cloner cloner.Cloner[T]
}

// New constructs an Inner holding value.
func New[T any](value T, c cloner.Cloner[T]) *Inner[T] {
	return &Inner[T]{value: c.Clone(value), cloner: c}
}

// Get returns a copy of the current value.
func (in *Inner[T]) Get() T {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.cloner.Clone(in.value)
}

// Set replaces the current value.
func (in *Inner[T]) Set(value T) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.value = in.cloner.Clone(value)
}
