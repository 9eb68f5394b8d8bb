package nmt_test

import (
	"testing"

	"github.com/kolkov/nmt"
)

func TestSlcHandleBasics(t *testing.T) {
	h := nmt.NewSlc(1, nmt.Identity[int]())
	if got := h.Get(); got != 1 {
		t.Fatalf("Get() = %d, want 1", got)
	}
	h.Set(2)
	if got := h.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}
}

func TestSlcHandleCloneSeesWrites(t *testing.T) {
	h := nmt.NewSlc(1, nmt.Identity[int]())
	other := h.Clone()

	h.Set(2)
	var got int
	for i := 0; i < 1000; i++ {
		got = other.Get()
		if got == 2 {
			break
		}
	}
	if got != 2 {
		t.Fatalf("cloned SlcHandle never observed write, last saw %d", got)
	}
}

func BenchmarkSlcHandleGetNoWriter(b *testing.B) {
	h := nmt.NewSlc(42, nmt.Identity[int]())
	for i := 0; i < b.N; i++ {
		_ = h.Get()
	}
}

func TestSlcHandleRepeatedGetWithNoWriter(t *testing.T) {
	h := nmt.NewSlc("steady", nmt.Identity[string]())
	for i := 0; i < 1000; i++ {
		if got := h.Get(); got != "steady" {
			t.Fatalf("Get() = %q on iteration %d, want %q", got, i, "steady")
		}
	}
}
