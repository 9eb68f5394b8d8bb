// Copyright 2025 The nmt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && (amd64 || arm64)

package nmt

import (
	"github.com/kolkov/nmt/internal/nmt/cloner"
	"github.com/kolkov/nmt/internal/nmt/slc"
)

// SlcHandle is the Self-Locally-Cached variant of Handle: it keeps its
// own copy of the value plus the version it was read at, so a call to
// Get with no intervening Set anywhere is a single relaxed load and a
// comparison rather than a trip through the per-shard machinery.
//
// Unlike Handle, SlcHandle is not safe for concurrent use by multiple
// goroutines — Get and Set both mutate the per-handle cache. Call
// [SlcHandle.Clone] once per goroutine that needs to read or write.
type SlcHandle[T any] struct {
	h *slc.Handle[T]
}

// NewSlc constructs an SlcHandle seeded with value.
func NewSlc[T any](value T, c cloner.Cloner[T]) *SlcHandle[T] {
	return &SlcHandle[T]{h: slc.New(value, c)}
}

// Get returns the cached value, refreshing it first if a newer value
// has been published since this handle last refreshed.
func (s *SlcHandle[T]) Get() T {
	return s.h.Get()
}

// Set publishes value and updates this handle's own cache to match.
func (s *SlcHandle[T]) Set(value T) {
	s.h.Set(value)
}

// Clone returns an SlcHandle sharing this handle's core but with an
// independent local cache.
func (s *SlcHandle[T]) Clone() *SlcHandle[T] {
	return &SlcHandle[T]{h: s.h.Clone()}
}
