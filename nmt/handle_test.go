package nmt_test

import (
	"sync"
	"testing"

	"github.com/kolkov/nmt"
)

func TestHandleBasics(t *testing.T) {
	h := nmt.New(10, nmt.Identity[int]())
	if got := h.Get(); got != 10 {
		t.Fatalf("Get() = %d, want 10", got)
	}

	h.Set(20)
	var got int
	for i := 0; i < 1000; i++ {
		got = h.Get()
		if got == 20 {
			break
		}
	}
	if got != 20 {
		t.Fatalf("Get() never converged to 20, last saw %d", got)
	}
}

func TestHandleCloneSharesCore(t *testing.T) {
	h := nmt.New(1, nmt.Identity[int]())
	clone := h.Clone()

	h.Set(2)
	var got int
	for i := 0; i < 1000; i++ {
		got = clone.Get()
		if got == 2 {
			break
		}
	}
	if got != 2 {
		t.Fatalf("clone never observed write, last saw %d", got)
	}
}

func TestHandleConcurrentWritersSerialize(t *testing.T) {
	h := nmt.New(0, nmt.Identity[int]())

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Set(i)
		}()
	}
	wg.Wait()

	got := h.Get()
	if got < 1 || got > 20 {
		t.Fatalf("Get() = %d, want one of the values actually set", got)
	}
}

func BenchmarkHandleGet(b *testing.B) {
	h := nmt.New(42, nmt.Identity[int]())
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = h.Get()
		}
	})
}

func BenchmarkHandleSet(b *testing.B) {
	h := nmt.New(0, nmt.Identity[int]())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Set(i)
	}
}

type point struct{ x, y int }

func TestHandleCustomCloner(t *testing.T) {
	calls := 0
	c := nmt.CloneFunc[point](func(p point) point {
		calls++
		return p
	})

	h := nmt.New(point{1, 2}, c)
	if got := h.Get(); got != (point{1, 2}) {
		t.Fatalf("Get() = %+v, want {1 2}", got)
	}
	if calls == 0 {
		t.Fatal("custom cloner was never invoked")
	}
}
