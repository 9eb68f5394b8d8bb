//go:build linux && (amd64 || arm64)

package rseq

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Struct mirrors the kernel's per-thread `struct rseq` registration
// area (linux/include/uapi/linux/rseq.h). Every field of the kernel
// layout is named, though this package reads only CPUID; all of them
// are accounted for in sizeOfStruct so the kernel doesn't read past
// the end of our allocation.
//
//	struct rseq {
//		__u32 cpu_id_start;
//		__u32 cpu_id;
//		__u64 rseq_cs;
//		__u32 flags;
//		__u32 node_id;
//		__u32 mm_cid;
//		char  end[];
//	} __attribute__((aligned(4 * sizeof(__u64))));
type Struct struct {
	CPUIDStart uint32
	CPUID      uint32
	RseqCS     uint64
	Flags      uint32
	NodeID     uint32
	MMCID      uint32
	_          [4]byte // pad to the kernel's 32-byte aligned layout
}

const sizeOfStruct = 32

// sysRseq is the raw rseq(2) syscall number on linux/amd64 and
// linux/arm64 (see arch/{x86,arm64}/include/asm/unistd*.h, table entry
// "rseq"). golang.org/x/sys/unix does not expose a typed wrapper for
// this syscall, only the raw number, reached the way this module reaches
// every other kernel-ABI primitive: unix.RawSyscall6 plus a hand-rolled
// struct layout.
const sysRseq = unix.SYS_RSEQ

// Session is a kernel rseq registration bound to one OS thread.
//
// The kernel ABI is inherently per-OS-thread: registration happens via
// a syscall made by a specific thread, and only that thread's CPU
// migrations are reflected in the registered struct. Go's goroutines
// are not threads — the scheduler is free to move an unlocked
// goroutine between OS threads at any yield point. A Session is
// therefore only meaningful for a goroutine that has called
// runtime.LockOSThread and kept it locked for the Session's entire
// lifetime; Register documents this requirement rather than enforcing
// it — a misuse that should be caught in development, not production.
type Session struct {
	st         *Struct
	lastCPU    int32
	migrations atomic.Uint64
}

// NewSession constructs an unregistered Session.
func NewSession() *Session {
	return &Session{lastCPU: -1}
}

// Register performs the rseq(2) registration syscall for the calling
// OS thread. It must be called after runtime.LockOSThread and before
// any call to CPUID.
func (s *Session) Register() error {
	st := &Struct{}
	_, _, errno := unix.RawSyscall6(sysRseq,
		uintptr(unsafe.Pointer(st)), sizeOfStruct, 0, 0, 0, 0)
	if errno != 0 {
		return fmt.Errorf("rseq: registration failed: %w", errno)
	}
	s.st = st
	s.lastCPU = int32(loadCPUID(st))
	return nil
}

// CPUID returns the hardware CPU id the kernel last observed this OS
// thread running on, per the kernel-maintained cpu_id field, and
// records whether this call observed a migration since the previous
// call. The kernel updates cpu_id itself on every return to user space
// after a migration; this is a single atomic load rather than a
// read-modify-write because only the kernel ever writes this field —
// the same treatment glibc and the per_cpu_rc assembly described in
// asm_amd64.go give it.
func (s *Session) CPUID() int {
	if s.st == nil {
		return -1
	}
	cur := int32(loadCPUID(s.st))
	if s.lastCPU >= 0 && cur != s.lastCPU {
		s.migrations.Add(1)
	}
	s.lastCPU = cur
	return int(cur)
}

// Migrations returns the number of hardware-CPU migrations this
// Session has observed across all CPUID calls so far.
func (s *Session) Migrations() uint64 {
	return s.migrations.Load()
}

func loadCPUID(st *Struct) uint32 {
	return atomic.LoadUint32(&st.CPUID)
}
