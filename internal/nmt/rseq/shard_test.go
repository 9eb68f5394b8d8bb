package rseq

import (
	"runtime"
	"testing"
)

func TestPinReturnsInRangeShard(t *testing.T) {
	cpu := Pin()
	defer Unpin()

	if cpu < 0 || cpu >= runtime.GOMAXPROCS(0) {
		t.Fatalf("Pin() = %d, want in [0, %d)", cpu, runtime.GOMAXPROCS(0))
	}
}

func TestNumShardsTracksGOMAXPROCS(t *testing.T) {
	if got, want := NumShards(), runtime.GOMAXPROCS(0); got != want {
		t.Fatalf("NumShards() = %d, want %d", got, want)
	}
}

func TestSessionStartsWithNoMigrations(t *testing.T) {
	s := NewSession()
	if got := s.Migrations(); got != 0 {
		t.Fatalf("fresh Session.Migrations() = %d, want 0", got)
	}
	// Register may fail in a sandboxed test environment (seccomp, an
	// old kernel, a non-Linux platform's no-op implementation); either
	// way CPUID and Migrations must stay well-behaved afterward.
	_ = s.Register()
	_ = s.CPUID()
}
