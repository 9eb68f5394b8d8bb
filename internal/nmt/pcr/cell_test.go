package pcr

import (
	"testing"

	"github.com/kolkov/nmt/internal/nmt/rseq"
)

func TestAcquireReleaseSameShard(t *testing.T) {
	n := rseq.NumShards()
	slots := NewSlots[int](n)

	cpu := rseq.Pin()
	cell := New(cpu, 42)
	slots[cpu].Store(cell)
	rseq.Unpin()

	gotCPU, got := Acquire(slots)
	if got == nil {
		t.Fatalf("Acquire returned nil cell")
	}
	if got.Payload != 42 {
		t.Errorf("Payload = %d, want 42", got.Payload)
	}
	if gotCPU != got.CPUID() {
		t.Errorf("Acquire cpu = %d, cell owner = %d", gotCPU, got.CPUID())
	}

	// Two references now: the publish reference from New, and the one
	// Acquire just took.
	if res := Release(got); res != Alive {
		t.Errorf("first Release = %v, want Alive", res)
	}
	if res := Release(cell); res != Dead {
		t.Errorf("second Release = %v, want Dead", res)
	}
}

func TestAcquireEmptySlot(t *testing.T) {
	slots := NewSlots[int](rseq.NumShards())
	cpu, cell := Acquire(slots)
	if cell != nil {
		t.Fatalf("Acquire on empty slot returned non-nil cell")
	}
	if cpu < 0 {
		t.Errorf("Acquire returned invalid cpu %d", cpu)
	}
}

func TestAcquireOutOfRangeSlots(t *testing.T) {
	// A zero-length slot array simulates GOMAXPROCS having grown past
	// the array's construction-time size; Acquire must degrade to
	// "nothing here" rather than panic.
	slots := NewSlots[int](0)
	_, cell := Acquire(slots)
	if cell != nil {
		t.Fatalf("Acquire on empty array returned non-nil cell")
	}
}

func TestAcquireModWrapsOutOfRangeShard(t *testing.T) {
	// A single-slot array simulates GOMAXPROCS having grown since
	// construction; every shard id must wrap onto slot 0 rather than
	// come back empty.
	slots := NewSlots[int](1)
	rseq.Pin()
	cell := New(0, 7)
	slots[0].Store(cell)
	rseq.Unpin()

	_, got := AcquireMod(slots)
	if got == nil {
		t.Fatalf("AcquireMod returned nil cell")
	}
	if got.Payload != 7 {
		t.Errorf("Payload = %d, want 7", got.Payload)
	}
}

func TestAcquireModEmptyArray(t *testing.T) {
	slots := NewSlots[int](0)
	_, cell := AcquireMod(slots)
	if cell != nil {
		t.Fatalf("AcquireMod on empty array returned non-nil cell")
	}
}

func TestReleaseOffCPU(t *testing.T) {
	before := OffCPUReleaseCount()

	cpu := rseq.Pin()
	cell := New(cpu, 1)
	rseq.Unpin()

	// Force a cpu mismatch by hand: -1 can never equal a real pinned
	// shard id, so this deterministically exercises the OffCPU path
	// instead of racing the scheduler for a genuine migration.
	cell.cpuID = -1

	if res := Release(cell); res != OffCPU {
		t.Fatalf("Release = %v, want OffCPU", res)
	}
	if got := OffCPUReleaseCount(); got != before+1 {
		t.Errorf("OffCPUReleaseCount = %d, want %d", got, before+1)
	}
}

func TestReleaseRefcountConservation(t *testing.T) {
	cpu := rseq.Pin()
	cell := New(cpu, "hello")
	rseq.Unpin()

	const extra = 100
	for i := 0; i < extra; i++ {
		rseq.Pin()
		cell.rc++
		rseq.Unpin()
	}

	deadCount := 0
	for i := 0; i < extra; i++ {
		if Release(cell) == Dead {
			deadCount++
		}
	}
	if deadCount != 0 {
		t.Fatalf("premature Dead before final release")
	}
	if res := Release(cell); res != Dead {
		t.Fatalf("final Release = %v, want Dead", res)
	}
}
