package slc

import (
	"testing"

	"github.com/kolkov/nmt/internal/nmt/cloner"
)

func TestGetReturnsSeeded(t *testing.T) {
	h := New(10, cloner.Identity[int]())
	if got := h.Get(); got != 10 {
		t.Fatalf("Get() = %d, want 10", got)
	}
}

func TestSetThenGetOwnHandle(t *testing.T) {
	h := New(1, cloner.Identity[int]())
	h.Set(2)
	if got := h.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}
}

func TestCloneSeesWrites(t *testing.T) {
	h := New(1, cloner.Identity[int]())
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
		t.Fatalf("cloned handle never observed the write, last saw %d", got)
	}
}

func TestGetShortCircuitsWithNoWriter(t *testing.T) {
	h := New(10, cloner.Identity[int]())
	before := h.inner.GetCalls()

	for i := 0; i < 1_000_000; i++ {
		if got := h.Get(); got != 10 {
			t.Fatalf("Get() = %d on iteration %d, want 10", got, i)
		}
	}

	if after := h.inner.GetCalls(); after != before {
		t.Fatalf("inner Get invoked %d times across a million cached reads, want %d", after, before)
	}
}

func TestCloneIndependentCache(t *testing.T) {
	type box struct{ n int }
	identity := cloner.Func[box](func(b box) box { return b })

	h := New(box{n: 1}, identity)
	other := h.Clone()

	h.Set(box{n: 2})
	// other hasn't refreshed yet; its cache should be untouched by
	// h.Set until other.Get() notices the version bump itself.
	if got := other.cached.Value.n; got != 1 {
		t.Fatalf("other's cache = %d after h.Set, before any refresh; want 1", got)
	}
}
