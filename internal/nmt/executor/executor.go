// Package executor implements the per-shard task queue that the rest
// of this module forwards off-shard work to: in particular, a
// reference-count release that lands on the wrong shard (pcr.OffCPU)
// cannot simply decrement rc in place, because a non-atomic decrement
// is only safe on the shard that owns the data. Instead it is handed
// off to that shard's worker, exactly as
// original_source/src/nmt/rseq/per_cpu_thread.rs hands the release
// closure to a goroutine (there, an OS thread) pinned to the data's
// owning CPU via run_on_cpu.
//
// Workers are spawned lazily, one per possible hardware CPU, and are
// never torn down: a module built around the assumption that the
// number of CPUs never shrinks has no code path that needs to stop a
// worker.
package executor

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/kolkov/nmt/internal/nmt/cpuset"
	"github.com/kolkov/nmt/internal/nmt/rseq"
)

// Task is a unit of work bound for a specific CPU's worker.
type Task func()

type worker struct {
	tasks chan Task
}

// Pool lazily spawns and holds one worker goroutine per possible CPU.
type Pool struct {
	mu      sync.Mutex
	workers []*worker // indexed by hardware cpu id; nil until first use
}

// pool is the process-wide executor every package in this module
// forwards off-shard work to. A single shared pool, rather than one
// per Inner, matches original_source's THREADS static: CPU affinity
// is a machine-wide resource, not a per-value one.
//
// Construction is deferred to the first call to Default, not done at
// package-init time: sizing it calls out to cpuset.TryNumPossibleCPUs,
// which reads /sys/devices/system/cpu/possible, and a package that
// panicked merely on being imported into an environment without that
// file (a container with /sys unmounted, a non-Linux build running
// this package's platform-independent pieces under test) would be far
// too aggressive. Deferring to first use also means a program that
// never touches nmt never pays for the read at all.
var (
	poolOnce sync.Once
	pool     *Pool
)

// numPossibleCPUs sizes the pool by the number of CPUs the scheduler
// could ever place this process on, which may exceed GOMAXPROCS.
// Falling back to runtime.NumCPU keeps this package usable even when
// internal/nmt/cpuset's /sys read is unavailable.
func numPossibleCPUs() int {
	if n, err := cpuset.TryNumPossibleCPUs(); err == nil {
		return n
	}
	return runtime.NumCPU()
}

// NewPool allocates a pool sized for n CPUs. Exported for tests and
// for callers that want an executor independent of the shared
// process-wide one.
func NewPool(n int) *Pool {
	return &Pool{workers: make([]*worker, n)}
}

// Default returns the process-wide pool used by pcr-release
// forwarding, constructing it on the first call.
func Default() *Pool {
	poolOnce.Do(func() {
		pool = NewPool(numPossibleCPUs())
	})
	return pool
}

// Run schedules task to run on the worker bound to cpu, spawning that
// worker on first use. Each worker's queue holds at most 64 tasks;
// while it is full, Run blocks until the worker takes the next one
// off. Run does not wait for task itself to run.
func (p *Pool) Run(cpu int, task Task) {
	p.workerFor(cpu).tasks <- task
}

func (p *Pool) workerFor(cpu int) *worker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cpu >= len(p.workers) {
		// A hot-plugged CPU arrived after the pool was sized; grow
		// rather than drop the task.
		grown := make([]*worker, cpu+1)
		copy(grown, p.workers)
		p.workers = grown
	}
	if p.workers[cpu] == nil {
		w := &worker{tasks: make(chan Task, 64)}
		p.workers[cpu] = w
		go runWorker(cpu, w)
	}
	return p.workers[cpu]
}

// migrations counts, across every worker, how many times the kernel
// observed an OS thread backing a worker move to a different hardware
// CPU after it was asked to stay put. A healthy steady-state workload
// keeps this at or near zero; a climbing count means the affinity
// request above isn't holding (cgroup quota changes, a cpuset the
// scheduler doesn't honor, an overcommitted host).
var migrations atomic.Uint64

// MigrationCount returns the number of hardware-CPU migrations
// observed across every worker's rseq registration so far.
func MigrationCount() uint64 {
	return migrations.Load()
}

// runWorker pins its goroutine's OS thread to cpu and then services
// tasks forever. A worker is never expected to run out of tasks and
// exit; if the process wants fewer CPUs, it should never have started
// a worker for the excluded ones.
func runWorker(cpu int, w *worker) {
	defer abortOnPanic(cpu)

	runtime.LockOSThread()
	if err := setAffinity(cpu); err != nil {
		// Affinity is an optimization, not a correctness requirement:
		// this worker is still the only goroutine that will ever
		// touch cpu's shard data, so a sandboxed environment that
		// forbids pinning (a restrictive cpuset, a CPU id the kernel
		// never brought up) degrades to "ordinary goroutine scheduled
		// like any other" rather than crashing the process.
		fmt.Fprintf(os.Stderr, "nmt: cpu %d: affinity not set: %v\n", cpu, err)
	}

	session := rseq.NewSession()
	// Registration failure (old kernel, seccomp filter) just means the
	// migration diagnostic stays at zero for this worker; the worker
	// itself still runs its tasks correctly regardless.
	_ = session.Register()
	var lastSeen uint64

	for task := range w.tasks {
		session.CPUID()
		if m := session.Migrations(); m != lastSeen {
			migrations.Add(m - lastSeen)
			lastSeen = m
		}
		task()
	}
}

func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// abortOnPanic terminates the process immediately on an unrecovered
// worker panic, the same "abort, don't unwind" contract
// original_source/src/rseq/abort_on_drop.rs and abort_on_panic.rs give
// a per-cpu thread: a worker that silently died would leave its
// shard's off-cpu releases queued forever with nothing ever reading
// them, slowly leaking every Cell released while migrated off that
// shard.
func abortOnPanic(cpu int) {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "nmt: fatal panic in cpu %d worker: %v\n", cpu, r)
		os.Exit(2)
	}
}
