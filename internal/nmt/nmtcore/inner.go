// Package nmtcore implements the Non-Monotonic Core: the per-shard
// live/pending arrangement that lets Get run without ever taking a
// lock, at the cost of Get occasionally returning a value older than
// the most recent Set (hence "non-monotonic" — see Inner.Get).
//
// Ground truth for the algorithm is
// original_source/src/nmt/rseq/inner.rs: Set builds one fresh
// per-shard cell per shard up front (so the expensive clone work never
// happens while holding the commit lock), then takes that lock and
// atomically swaps each fresh cell into that shard's pending slot. Get lazily promotes its own shard's
// pending slot into the live slot the first time it notices a pending
// value is waiting, then acquires a transient reference on whatever is
// live and clones its payload out.
package nmtcore

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/kolkov/nmt/internal/nmt/cloner"
	"github.com/kolkov/nmt/internal/nmt/executor"
	"github.com/kolkov/nmt/internal/nmt/pcr"
	"github.com/kolkov/nmt/internal/nmt/rseq"
)

// Versioned pairs a value with the Set-call sequence number that
// produced it, so SLC (internal/nmt/slc) can tell whether its cached
// copy is still current without comparing the values themselves.
type Versioned[T any] struct {
	Version uint64
	Value   T
}

// Inner is the Non-Monotonic Core shared by every handle cloned from
// the same value.
type Inner[T any] struct {
	version  atomic.Uint64
	getCalls atomic.Uint64
	setMu    sync.Mutex
	cloner   cloner.Cloner[T]

	live    pcr.Slots[Versioned[T]]
	pending []atomic.Pointer[pcr.Cell[Versioned[T]]]
}

// New constructs an Inner seeded with value on every shard.
func New[T any](value T, c cloner.Cloner[T]) *Inner[T] {
	n := rseq.NumShards()
	in := &Inner[T]{
		cloner:  c,
		live:    pcr.NewSlots[Versioned[T]](n),
		pending: make([]atomic.Pointer[pcr.Cell[Versioned[T]]], n),
	}
	for cpu := 0; cpu < n; cpu++ {
		seeded := Versioned[T]{Version: 0, Value: c.Clone(value)}
		in.live[cpu].Store(pcr.New(cpu, seeded))
	}
	return in
}

// Set publishes value so that, at some point after this call returns,
// every Get on every shard observes it or a value set by a later Set.
// Concurrent Set calls serialize on setMu: each one commits exactly
// once, under its own version number, in the order they take the lock.
func (in *Inner[T]) Set(value T) {
	n := len(in.live)
	fresh := make([]*pcr.Cell[Versioned[T]], n)
	for cpu := 0; cpu < n; cpu++ {
		fresh[cpu] = pcr.New(cpu, Versioned[T]{Value: in.cloner.Clone(value)})
	}

	in.setMu.Lock()
	version := in.version.Load() + 1
	for cpu := 0; cpu < n; cpu++ {
		// fresh[cpu] was just allocated by this goroutine and has
		// not been published to live or pending yet, so no reader
		// can observe this write: the general Cell contract that
		// Payload never changes after construction only binds
		// once a Cell is reachable through a Slots entry.
		fresh[cpu].Payload.Version = version
		in.pending[cpu].Store(fresh[cpu])
	}
	in.version.Store(version)
	in.setMu.Unlock()
}

// Version returns the sequence number of the most recently committed
// Set call.
func (in *Inner[T]) Version() uint64 {
	return in.version.Load()
}

// GetCalls returns the number of times Get has run against this Inner.
// SLC (internal/nmt/slc) exists specifically to keep this number small
// relative to the number of times a caller invokes SlcHandle.Get.
func (in *Inner[T]) GetCalls() uint64 {
	return in.getCalls.Load()
}

// maybeUpdate lazily promotes cpu's pending slot into its live slot,
// releasing whatever was live before. Called with the caller's
// goroutine already pinned to cpu.
func (in *Inner[T]) maybeUpdate(cpu int) {
	if in.pending[cpu].Load() == nil {
		return
	}
	fresh := in.pending[cpu].Swap(nil)
	if fresh == nil {
		return
	}
	old := in.live[cpu].Swap(fresh)
	if old != nil {
		in.release(old)
	}
}

// Get returns the most recently promoted value on the calling
// goroutine's shard. Because promotion only happens lazily, on a
// shard whose Get hasn't run since the last Set, this can return a
// value older than the one currently pending; it is guaranteed to
// never return a value older than what that same shard last returned,
// though different shards can disagree transiently.
func (in *Inner[T]) Get() Versioned[T] {
	in.getCalls.Add(1)
	// Promotion and acquisition run under one pin, so the shard whose
	// pending slot was just promoted is the shard read from.
	cpu := rseq.Pin()
	if cpu < len(in.live) {
		in.maybeUpdate(cpu)
	}

	// AcquireMod rather than Acquire: if GOMAXPROCS has grown since
	// New sized in.live, a shard id at or beyond its length is wrapped
	// onto an existing shard instead of coming back empty. Every
	// shard was seeded at construction, so this can only return a nil
	// cell if in.live itself is empty, which New never produces.
	_, cell := pcr.AcquireMod(in.live)
	rseq.Unpin()
	if cell == nil {
		panic("nmtcore: Inner constructed with zero shards")
	}
	out := Versioned[T]{
		Version: cell.Payload.Version,
		Value:   in.cloner.Clone(cell.Payload.Value),
	}
	in.release(cell)
	return out
}

// release drops a transient or held reference, forwarding to the
// owning shard's executor worker when the calling goroutine has
// migrated off that shard since acquiring it.
//
// A hardware-CPU-affinity-pinned worker (internal/nmt/executor) cannot
// by itself guarantee its goroutine lands on the Go scheduler's P
// shard cell.CPUID() names — shard identity here is a P id (see
// internal/nmt/rseq), not the hardware core the worker's OS thread is
// bound to. So the task handed to the executor carries its own
// retry: it re-attempts the release, yielding between attempts, until
// it observes a Pin() that actually matches the cell's shard. The
// retry has no upper bound on the number of attempts. This still satisfies the externally observable
// contract — an off-CPU release is rescheduled onto the per-CPU
// executor rather than retried forever in the original caller's
// goroutine — while keeping the actual correctness argument anchored
// in Pin's migration-safety rather than in OS thread affinity.
func (in *Inner[T]) release(cell *pcr.Cell[Versioned[T]]) {
	if res := pcr.Release(cell); res == pcr.OffCPU {
		executor.Default().Run(cell.CPUID(), func() {
			releaseUntilOwned(cell)
		})
	}
}

func releaseUntilOwned[T any](cell *pcr.Cell[T]) {
	for {
		if res := pcr.Release(cell); res != pcr.OffCPU {
			return
		}
		runtime.Gosched()
	}
}
