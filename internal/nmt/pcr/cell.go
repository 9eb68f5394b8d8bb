// Package pcr implements the per-CPU reference cell at the center of
// this module: a cache-line-aligned, reference-counted record owned by
// exactly one CPU shard, whose reference count is mutated by plain
// (non-atomic) increments and decrements that are nonetheless safe
// because they only ever run while the owning goroutine is pinned to
// that shard — see internal/nmt/rseq for why pinning substitutes for
// a kernel restartable-sequence critical section here.
//
// Because only the owning shard's pinned goroutines ever touch a given
// Cell's rc field, the cache line backing it is never bounced between
// cores the way a contended atomic.Int64 would be: increments and
// decrements stay hot in L1.
package pcr

import (
	"sync/atomic"

	"github.com/kolkov/nmt/internal/nmt/rseq"
)

// cacheLineSize is sized to push Cell's mutable fields onto their own
// cache line on the overwhelmingly common 64-byte cache line x86-64
// and arm64 targets this module cares about.
const cacheLineSize = 64

// Cell is a per-CPU reference-counted holder for a payload of type T.
//
// Invariants:
//   - once constructed, cpuID and Payload never change.
//   - rc is only ever mutated by a goroutine pinned to the shard
//     whose id equals cpuID.
//   - when rc reaches zero, exactly one caller observes Dead and
//     is responsible for discarding the Cell.
type Cell[T any] struct {
	rc    int64
	cpuID int32

	_ [cacheLineSize - 8 - 4]byte // keep Payload off the rc/cpuID cache line

	Payload T
}

// New allocates a fresh Cell owned by cpuID with an initial reference
// count of one — the reference the caller (a writer depositing it
// into a publish slot) implicitly holds.
func New[T any](cpuID int, payload T) *Cell[T] {
	return &Cell[T]{rc: 1, cpuID: int32(cpuID), Payload: payload}
}

// CPUID returns the shard this Cell is bound to.
func (c *Cell[T]) CPUID() int {
	return int(c.cpuID)
}

// ReleaseResult is the outcome of a Release call.
type ReleaseResult int

const (
	// Alive means the Cell still has at least one outstanding
	// reference after this release.
	Alive ReleaseResult = iota
	// Dead means this release dropped the last reference; the
	// caller must discard the Cell.
	Dead
	// OffCPU means the release ran on a different shard than the
	// one the Cell is bound to, so no mutation happened: the caller
	// must reschedule the release onto the owning shard.
	OffCPU
)

// Slots is the per-shard array of live Cell pointers a reader
// acquires against. It is defined here, not in nmtcore, because
// Acquire's bounds/migration handling is part of the cell's own
// contract, not the caller's.
type Slots[T any] []atomic.Pointer[Cell[T]]

// NewSlots allocates n empty slots.
func NewSlots[T any](n int) Slots[T] {
	return make(Slots[T], n)
}

// Acquire adds a transient reference to the Cell currently published
// in slots[cpu], where cpu is the calling goroutine's pinned shard.
// It returns the shard id and the Cell (nil if the slot was empty).
//
// The entire sequence stands in for a restartable-sequence critical
// section: here, it is a pinned section instead. Pin disables
// preemption for the goroutine, so between Pin and Unpin the shard
// cannot change — there is no abort-and-restart because there is
// nothing to abort.
//
//go:nosplit
func Acquire[T any](slots Slots[T]) (cpu int, cell *Cell[T]) {
	cpu = rseq.Pin()
	defer rseq.Unpin()

	if cpu >= len(slots) {
		// GOMAXPROCS grew since slots was sized; see rseq.NumShards.
		return cpu, nil
	}

	cell = slots[cpu].Load()
	if cell == nil {
		return cpu, nil
	}
	// Plain, non-atomic increment: safe only because we are pinned
	// to cell.cpuID's shard and cell.cpuID == cpu by construction —
	// every slot holds a Cell owned by that index.
	cell.rc++
	return cpu, cell
}

// AcquireMod behaves like Acquire, except a shard id at or beyond
// len(slots) is wrapped with modulo instead of treated as empty. Callers
// that need every Get to succeed even after GOMAXPROCS has grown past
// the array's construction-time size use this instead of Acquire; the
// wrapped shard still satisfies every Cell invariant, it is simply not
// the caller's "true" shard, which only affects contention, not
// correctness.
//
//go:nosplit
func AcquireMod[T any](slots Slots[T]) (cpu int, cell *Cell[T]) {
	cpu = rseq.Pin()
	defer rseq.Unpin()

	if len(slots) == 0 {
		return cpu, nil
	}
	idx := cpu % len(slots)

	cell = slots[idx].Load()
	if cell == nil {
		return cpu, nil
	}
	cell.rc++
	return cpu, cell
}

// offCPUReleases counts how many Release calls landed on a shard other
// than the one the Cell is bound to and therefore made no mutation.
// Every such call is a reference the caller must get rid of some other
// way (see internal/nmt/executor's per-shard task queue), so a module
// under heavy migration pressure will see this counter climb.
var offCPUReleases atomic.Uint64

// OffCPUReleaseCount returns the number of Release calls observed
// across the process that could not run on the Cell's owning shard.
func OffCPUReleaseCount() uint64 {
	return offCPUReleases.Load()
}

// Release drops a transient or held reference to cell. See
// ReleaseResult for the three possible outcomes.
//
//go:nosplit
func Release[T any](cell *Cell[T]) ReleaseResult {
	cpu := rseq.Pin()
	defer rseq.Unpin()

	if int32(cpu) != cell.cpuID {
		offCPUReleases.Add(1)
		return OffCPU
	}
	cell.rc--
	if cell.rc == 0 {
		return Dead
	}
	return Alive
}
