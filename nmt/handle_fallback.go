// Copyright 2025 The nmt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux || !(amd64 || arm64)

// Handle on the fallback path: backed by internal/nmt/fallback's
// mutex. Semantics degrade to every reader blocking every writer; the
// exported interface is otherwise identical to handle_linux.go.

package nmt

import (
	"github.com/kolkov/nmt/internal/nmt/cloner"
	"github.com/kolkov/nmt/internal/nmt/fallback"
)

// Handle is a thin shared-ownership wrapper around a container's
// core. Construct one with [New]; share it across goroutines by
// calling [Handle.Clone] or simply by copying the pointer — both give
// every copy a view of the same underlying value.
type Handle[T any] struct {
	inner *fallback.Inner[T]
}

// New constructs a Handle seeded with value, using c to produce every
// independent copy this container ever hands out or stores.
func New[T any](value T, c cloner.Cloner[T]) *Handle[T] {
	return &Handle[T]{inner: fallback.New(value, c)}
}

// Get returns the current value. On this platform every Get blocks
// any concurrent Set and vice versa.
func (h *Handle[T]) Get() T {
	return h.inner.Get()
}

// Set replaces the current value.
func (h *Handle[T]) Set(value T) {
	h.inner.Set(value)
}

// Clone returns a Handle sharing this Handle's core.
func (h *Handle[T]) Clone() *Handle[T] {
	return &Handle[T]{inner: h.inner}
}
