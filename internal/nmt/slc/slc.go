// Package slc implements the Self-Locally-Cached wrapper: a handle
// that keeps its own copy of the shared value plus the version it was
// read at, so that a reader which already holds the current version
// never has to touch per-shard state at all. See
// original_source/src/slc/mod.rs for the version this is translated
// from.
package slc

import (
	"github.com/kolkov/nmt/internal/nmt/cloner"
	"github.com/kolkov/nmt/internal/nmt/nmtcore"
)

// Handle is a per-goroutine cache in front of a shared Inner. It is
// not safe for concurrent use by multiple goroutines — like the
// original, each goroutine is expected to hold its own clone (see
// Clone) the same way each thread there holds its own AtomicSlc.
type Handle[T any] struct {
	cached nmtcore.Versioned[T]
	inner  *nmtcore.Inner[T]
	cloner cloner.Cloner[T]
}

// New constructs a Handle seeded with value.
func New[T any](value T, c cloner.Cloner[T]) *Handle[T] {
	return &Handle[T]{
		cached: nmtcore.Versioned[T]{Version: 0, Value: c.Clone(value)},
		inner:  nmtcore.New(value, c),
		cloner: c,
	}
}

// Get returns the cached value, refreshing it from the shared core
// first if the core's version has advanced since this Handle's last
// refresh. The fast path — nothing has changed — is a single relaxed
// load and a comparison; it never touches a per-shard slot.
func (h *Handle[T]) Get() T {
	if h.inner.Version() > h.cached.Version {
		h.refresh()
	}
	return h.cached.Value
}

func (h *Handle[T]) refresh() {
	h.cached = h.inner.Get()
}

// Set publishes value to every Handle sharing this Handle's core, and
// updates this Handle's own cache to match so its very next Get
// doesn't need to refresh.
func (h *Handle[T]) Set(value T) {
	h.inner.Set(value)
	h.cached = nmtcore.Versioned[T]{
		Version: h.inner.Version(),
		Value:   h.cloner.Clone(value),
	}
}

// Clone returns a new Handle sharing this Handle's core but with an
// independent local cache, mirroring AtomicSlc's #[derive(Clone)]: two
// Handles cloned from one another observe the same eventually
// consistent stream of Set calls but may be at different versions at
// any given instant.
func (h *Handle[T]) Clone() *Handle[T] {
	return &Handle[T]{
		cached: nmtcore.Versioned[T]{
			Version: h.cached.Version,
			Value:   h.cloner.Clone(h.cached.Value),
		},
		inner:  h.inner,
		cloner: h.cloner,
	}
}
