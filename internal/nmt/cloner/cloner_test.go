package cloner

import "testing"

func TestIdentity(t *testing.T) {
	c := Identity[int]()
	if got := c.Clone(7); got != 7 {
		t.Errorf("Clone(7) = %d, want 7", got)
	}
}

func TestFunc(t *testing.T) {
	calls := 0
	c := Func[[]int](func(v []int) []int {
		calls++
		out := make([]int, len(v))
		copy(out, v)
		return out
	})

	orig := []int{1, 2, 3}
	got := c.Clone(orig)
	got[0] = 99

	if orig[0] != 1 {
		t.Errorf("mutating the clone mutated the original: %v", orig)
	}
	if calls != 1 {
		t.Errorf("Clone called the wrapped func %d times, want 1", calls)
	}
}
