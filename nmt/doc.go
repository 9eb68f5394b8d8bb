// Package nmt provides an eventually-consistent atomic container for
// arbitrary cloneable values.
//
// A [Handle] publishes a single "current" value that any number of
// goroutines may read cheaply via [Handle.Get] and any number of
// goroutines may replace via [Handle.Set]. It makes no serializability
// or monotonicity guarantee, but promises that once writes stop,
// every reader eventually observes the last value written.
//
// # Why not just sync/atomic.Value or a mutex
//
// A mutex-protected value serializes every reader against every
// writer. An atomic.Pointer swap removes writer/reader contention but
// still forces every read to perform a CPU-cache-coherence-visible
// atomic load of a pointer that every other core may also be loading
// or storing. Handle instead gives each CPU shard its own
// reference-counted cell (see internal/nmt/pcr) and updates it lazily
// from a per-shard pending slot (internal/nmt/nmtcore): in the steady
// state, a read touches only cache lines already local to the core it
// runs on.
//
// # Two handle types
//
// [Handle] is safe to share across goroutines directly — [Handle.Get]
// always consults the shared core. [SlcHandle] trades that for speed:
// each SlcHandle keeps a private cached copy plus the version it was
// read at, so a goroutine that calls Get repeatedly with no writes in
// between pays for a single relaxed load after the first call. An
// SlcHandle is not safe for concurrent use by multiple goroutines —
// call [SlcHandle.Clone] once per goroutine that needs to read, the
// same way you would hand each goroutine its own *bufio.Reader rather
// than share one.
//
// # Platform support
//
// The fast path requires Linux on amd64 or arm64. On any other
// platform, [New] and [NewSlc] fall back to a value protected by a
// plain sync.Mutex: correct, but every reader blocks every writer.
package nmt
