package synth

import (
	"runtime"
	"sync"
	"testing"
)

func TestEventQueueFIFO(t *testing.T) {
	q := newEventQueue(3)
	if q.capacity() != 4 {
		t.Fatalf("capacity() = %d, want 4", q.capacity())
	}

	for i := range 4 {
		if !q.push(event{pitch: float64(i)}) {
			t.Fatalf("push %d failed", i)
		}
	}
	if q.push(event{}) {
		t.Fatal("push into full queue succeeded")
	}
	if q.pending() != 4 {
		t.Fatalf("pending() = %d, want 4", q.pending())
	}

	for i := range 4 {
		ev, ok := q.pop()
		if !ok || ev.pitch != float64(i) {
			t.Fatalf("pop %d = %+v, %v", i, ev, ok)
		}
	}
	if _, ok := q.pop(); ok {
		t.Fatal("pop from empty queue succeeded")
	}
}

func TestEventQueueConcurrentOrder(t *testing.T) {
	const total = 100000

	q := newEventQueue(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if !q.push(event{offset: i}) {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	next := 0
	for next < total {
		ev, ok := q.pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		if ev.offset != next {
			t.Fatalf("pop = %d, want %d", ev.offset, next)
		}
		next++
	}

	wg.Wait()
}
