package wsdeque

import (
	"sync"
	"testing"
)

func TestPushPopOwner(t *testing.T) {
	d := New(4)
	for i := 0; i < 4; i++ {
		if !d.PushBottom(i) {
			t.Fatalf("PushBottom(%d) failed", i)
		}
	}
	if d.PushBottom(4) {
		t.Fatal("PushBottom should fail once at capacity")
	}
	for i := 3; i >= 0; i-- {
		v, ok := d.PopBottom()
		if !ok || v.(int) != i {
			t.Fatalf("PopBottom() = (%v, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := d.PopBottom(); ok {
		t.Fatal("PopBottom on empty deque should fail")
	}
}

func TestStealFromTop(t *testing.T) {
	d := New(8)
	for i := 0; i < 5; i++ {
		d.PushBottom(i)
	}
	v, ok := d.Steal()
	if !ok || v.(int) != 0 {
		t.Fatalf("Steal() = (%v, %v), want (0, true)", v, ok)
	}
	if d.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", d.Len())
	}
}

func TestStealOnEmptyFails(t *testing.T) {
	d := New(4)
	if _, ok := d.Steal(); ok {
		t.Fatal("Steal on empty deque should fail")
	}
}

// TestConcurrentOwnerAndThieves pushes a known set of items and has the
// owner pop from the bottom racing against several thieves popping from
// the top; every item must be delivered exactly once, and delivery must
// stop once all n items have been collected.
func TestConcurrentOwnerAndThieves(t *testing.T) {
	const n = 10000
	const thieves = 4
	d := New(n)
	for i := 0; i < n; i++ {
		d.PushBottom(i)
	}

	var mu sync.Mutex
	seen := make([]int32, n)
	var delivered int32
	record := func(v interface{}) {
		i := v.(int)
		mu.Lock()
		seen[i]++
		delivered++
		mu.Unlock()
	}
	remaining := func() int32 {
		mu.Lock()
		defer mu.Unlock()
		return int32(n) - delivered
	}

	var wg sync.WaitGroup
	wg.Add(1 + thieves)

	go func() {
		defer wg.Done()
		for remaining() > 0 {
			if v, ok := d.PopBottom(); ok {
				record(v)
			}
		}
	}()
	for i := 0; i < thieves; i++ {
		go func() {
			defer wg.Done()
			for remaining() > 0 {
				if v, ok := d.Steal(); ok {
					record(v)
				}
			}
		}()
	}
	wg.Wait()

	for i, c := range seen {
		if c != 1 {
			t.Errorf("item %d delivered %d times, want exactly 1", i, c)
		}
	}
}
