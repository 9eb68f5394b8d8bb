// Copyright 2025 The nmt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && (amd64 || arm64)

package nmt

import (
	"github.com/kolkov/nmt/internal/nmt/executor"
	"github.com/kolkov/nmt/internal/nmt/pcr"
)

// OffCPUReleaseCount reports how many reference-cell release attempts,
// across every Handle and SlcHandle in this process, ran on a different
// shard than the one the cell was bound to. That counts both the
// original attempt that gets rescheduled through the per-CPU executor
// and each repeated attempt the executor's task makes before it lands
// on the cell's shard. In steady state under a workload where
// readers aren't migrating every call, this should stay a small
// fraction of the total number of Get calls; a climbing count
// indicates heavy goroutine migration between shards.
func OffCPUReleaseCount() uint64 {
	return pcr.OffCPUReleaseCount()
}

// MigrationCount reports how many times a per-CPU executor worker's
// backing OS thread was observed, via the kernel's restartable-sequence
// registration, to have moved to a different hardware CPU than the one
// it was pinned to. It counts hardware-CPU moves only; an off-CPU
// release is decided by Go scheduler shard (P) identity, which this
// count does not track.
func MigrationCount() uint64 {
	return executor.MigrationCount()
}
