package arena

import "testing"

func TestDestructorsRunInLIFOOrder(t *testing.T) {
	a := New()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		a.RegisterDestructor("node", func() { order = append(order, i) })
	}
	a.Destroy()
	want := []int{2, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	a := New()
	runs := 0
	a.RegisterDestructor("x", func() { runs++ })
	a.Destroy()
	a.Destroy()
	if runs != 1 {
		t.Fatalf("destructor ran %d times, want 1", runs)
	}
	if !a.Destroyed() {
		t.Fatal("Destroyed() = false after Destroy")
	}
}

func TestAllocAfterDestroyPanics(t *testing.T) {
	a := New()
	a.Destroy()
	defer func() {
		if recover() == nil {
			t.Fatal("expected Alloc after Destroy to panic")
		}
	}()
	a.Alloc(8)
}

func TestUsageGrowsWithAllocations(t *testing.T) {
	a := New()
	_, cap0 := a.Usage()
	a.Alloc(16)
	used, cap1 := a.Usage()
	if used != 16 {
		t.Fatalf("used = %d, want 16", used)
	}
	if cap1 < cap0 {
		t.Fatalf("cap shrank from %d to %d", cap0, cap1)
	}
}

func TestBigChunkBypassesPool(t *testing.T) {
	a := New()
	a.Alloc(BigChunkThreshold + 8)
	used, _ := a.Usage()
	if used != BigChunkThreshold+8 {
		t.Fatalf("used = %d, want %d", used, BigChunkThreshold+8)
	}
	if a.bigHead == nil {
		t.Fatal("a large allocation should land on the big-chunk list")
	}
}

func TestNewHelperAllocatesFromArena(t *testing.T) {
	a := New()
	type node struct{ x, y int }
	n := NewOf[node](a)
	if n == nil {
		t.Fatal("NewOf[node] returned nil")
	}
	used, _ := a.Usage()
	if used == 0 {
		t.Fatal("NewOf[node] should have charged the arena's budget")
	}
}
