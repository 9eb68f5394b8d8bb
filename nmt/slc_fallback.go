// Copyright 2025 The nmt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux || !(amd64 || arm64)

package nmt

import (
	"github.com/kolkov/nmt/internal/nmt/cloner"
	"github.com/kolkov/nmt/internal/nmt/fallback"
)

// SlcHandle on this platform has nothing cheaper to fall back to than
// Handle itself: there is no per-shard state to short-circuit, so Get
// and Set simply delegate to the same mutex-protected core. The type
// exists so code written against SlcHandle compiles and behaves
// correctly everywhere, even though it gets none of the fast path's
// speedup here.
type SlcHandle[T any] struct {
	inner *fallback.Inner[T]
}

// NewSlc constructs an SlcHandle seeded with value.
func NewSlc[T any](value T, c cloner.Cloner[T]) *SlcHandle[T] {
	return &SlcHandle[T]{inner: fallback.New(value, c)}
}

// Get returns the current value.
func (s *SlcHandle[T]) Get() T {
	return s.inner.Get()
}

// Set replaces the current value.
func (s *SlcHandle[T]) Set(value T) {
	s.inner.Set(value)
}

// Clone returns an SlcHandle sharing this handle's core.
func (s *SlcHandle[T]) Clone() *SlcHandle[T] {
	return &SlcHandle[T]{inner: s.inner}
}
