// Copyright 2025 The nmt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && (amd64 || arm64)

// Handle on the fast path: backed by the Non-Monotonic Core
// (internal/nmt/nmtcore).

package nmt

import (
	"github.com/kolkov/nmt/internal/nmt/cloner"
	"github.com/kolkov/nmt/internal/nmt/nmtcore"
)

// Handle is a thin shared-ownership wrapper around a container's
// core. Construct one with [New]; share it across goroutines by
// calling [Handle.Clone] or simply by copying the pointer — both give
// every copy a view of the same underlying value.
type Handle[T any] struct {
	inner *nmtcore.Inner[T]
}

// New constructs a Handle seeded with value, using c to produce every
// independent copy this container ever hands out or stores.
func New[T any](value T, c cloner.Cloner[T]) *Handle[T] {
	return &Handle[T]{inner: nmtcore.New(value, c)}
}

// Get returns an eventually-consistent snapshot of the current value.
// In the absence of concurrent writes it returns the last value set;
// under concurrent writes it may return any value that was ever set,
// not necessarily the most recent one, but never a value from before
// this Handle was constructed. See the package doc for what "eventual"
// means here.
func (h *Handle[T]) Get() T {
	return h.inner.Get().Value
}

// Set publishes value. At some point after Set returns, every Get on
// every clone of this Handle will return value or a value set by a
// later Set call.
func (h *Handle[T]) Set(value T) {
	h.inner.Set(value)
}

// Clone returns a Handle sharing this Handle's core.
func (h *Handle[T]) Clone() *Handle[T] {
	return &Handle[T]{inner: h.inner}
}
