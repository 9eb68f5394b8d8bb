// Package rseq supplies the "current CPU" primitive the rest of this
// module builds on: a cheap, contention-free way for a goroutine to
// learn which shard of a per-CPU array it should touch, together with
// a migration-safety guarantee that the shard can't change out from
// under it mid-critical-section.
//
// Go gives us no user-visible thread-local storage and no inline
// assembly critical section the compiler won't reorder around, so the
// literal kernel restartable-sequence ABI (see kernel_linux.go) is not
// this package's default CPU-identity source. Instead, the default
// path pins the calling goroutine to its current P (processor) the
// same way sync.Pool pins goroutines to their per-P free lists:
// runtime_procPin disables preemption for the goroutine, which is a
// strictly stronger guarantee than rseq's abort-and-restart — the
// goroutine flatly cannot migrate to a different P while pinned,
// rather than being allowed to migrate and then restarted.
//
// The two are used for different things: procPin answers "which shard
// may I touch without a locked instruction", rseq (kernel_linux.go)
// answers "did the OS actually move this thread to a different CPU",
// which only matters for the migration-rate diagnostic.
package rseq

import (
	"runtime"
	_ "unsafe" // for go:linkname
)

// runtime_procPin disables preemption for the calling goroutine and
// returns the id of its current P, in [0, runtime.GOMAXPROCS(0)).
// While pinned, the goroutine cannot be rescheduled onto a different
// P, so any data it touches that is indexed by P id is immune to the
// kind of concurrent mutation restartable sequences exist to guard
// against — without needing a single atomic bus-locked instruction.
//
// This is the same mechanism sync.Pool uses internally for its own
// per-P shards (runtime/proc.go defines it; sync/pool.go consumes it
// under this exact linkname).
//
//go:linkname runtime_procPin sync.runtime_procPin
func runtime_procPin() int

// runtime_procUnpin re-enables preemption for the calling goroutine.
//
//go:linkname runtime_procUnpin sync.runtime_procUnpin
func runtime_procUnpin()

// Pin pins the calling goroutine to its current shard and returns the
// shard id. The caller MUST call Unpin before doing anything that
// could block or take a lock — the goroutine cannot be preempted
// while pinned, so a long or blocking pinned section stalls the
// whole P, exactly as it would with sync.Pool.
//
//go:nosplit
func Pin() int {
	return runtime_procPin()
}

// Unpin releases a pin taken by Pin.
//
//go:nosplit
func Unpin() {
	runtime_procUnpin()
}

// NumShards returns the number of CPU shards the caller should size
// its per-CPU arrays to. It tracks runtime.GOMAXPROCS, which can grow
// at runtime (e.g. via a call to runtime.GOMAXPROCS or a cgroup quota
// change picked up by automaxprocs-style tooling); callers that size
// an array at construction time and read NumShards again later must
// treat a shard id at or beyond the array's length as "not present"
// rather than indexing out of bounds — see pcr.Acquire.
func NumShards() int {
	return runtime.GOMAXPROCS(0)
}
