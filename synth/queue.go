package synth

import "sync/atomic"

type eventKind uint8

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventAllNotesOff
)

type event struct {
	kind     eventKind
	pitch    float64
	velocity float64
	offset   int
}

// eventQueue is a bounded single-producer single-consumer ring. The producer
// only writes tail and the consumer only writes head, so neither side locks.
type eventQueue struct {
	buf  []event
	mask uint64

	head atomic.Uint64
	tail atomic.Uint64
}

func newEventQueue(capacity int) *eventQueue {
	size := 1
	for size < capacity {
		size <<= 1
	}

	return &eventQueue{
		buf:  make([]event, size),
		mask: uint64(size - 1),
	}
}

func (q *eventQueue) capacity() int { return len(q.buf) }

// push appends ev and reports whether a slot was free.
func (q *eventQueue) push(ev event) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = ev
	q.tail.Store(tail + 1)

	return true
}

// pop removes the oldest event.
func (q *eventQueue) pop() (event, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return event{}, false
	}
	ev := q.buf[head&q.mask]
	q.head.Store(head + 1)

	return ev, true
}

func (q *eventQueue) pending() int {
	return int(q.tail.Load() - q.head.Load())
}
