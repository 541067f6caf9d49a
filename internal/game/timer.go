package game

import (
	"container/heap"
	"time"
)

// Timer is a scheduled event on a TimerQueue. The pointer doubles as the
// cancellation token.
type Timer struct {
	id        uint64
	name      string
	at        time.Duration
	fn        func()
	index     int // heap index, -1 once popped or removed
	cancelled bool
	fired     bool
	queue     *TimerQueue
}

// Name returns the label given at scheduling time.
func (t *Timer) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Pending reports whether the timer will still fire.
func (t *Timer) Pending() bool {
	return t != nil && !t.cancelled && !t.fired
}

// Cancel stops the timer from firing. Returns false if it already fired or was
// cancelled. Safe on a nil timer.
func (t *Timer) Cancel() bool {
	if !t.Pending() {
		return false
	}
	t.cancelled = true
	if t.index >= 0 && t.queue != nil {
		heap.Remove(&t.queue.events, t.index)
	}
	return true
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at == h[j].at {
		return h[i].id < h[j].id
	}
	return h[i].at < h[j].at
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// TimerQueue holds deferred calls against a simulation clock. The clock only
// moves when Advance is called, once per frame, so every callback runs on the
// frame loop goroutine.
type TimerQueue struct {
	now    time.Duration
	seq    uint64
	events timerHeap
}

func NewTimerQueue() *TimerQueue {
	return &TimerQueue{}
}

// Now returns the simulation time elapsed since the queue was created.
func (q *TimerQueue) Now() time.Duration {
	return q.now
}

// Schedule registers fn to run once delay has elapsed on the simulation clock.
func (q *TimerQueue) Schedule(name string, delay time.Duration, fn func()) *Timer {
	if delay < 0 {
		delay = 0
	}
	q.seq++
	t := &Timer{
		id:    q.seq,
		name:  name,
		at:    q.now + delay,
		fn:    fn,
		queue: q,
	}
	heap.Push(&q.events, t)
	return t
}

// Advance moves the clock forward and runs every due event in order.
// Events scheduled by callbacks with a zero delay run in the same call.
// Returns the number of callbacks run.
func (q *TimerQueue) Advance(dt time.Duration) int {
	if dt > 0 {
		q.now += dt
	}
	fired := 0
	for q.events.Len() > 0 && q.events[0].at <= q.now {
		t := heap.Pop(&q.events).(*Timer)
		if t.cancelled {
			continue
		}
		t.fired = true
		if t.fn != nil {
			t.fn()
		}
		fired++
	}
	return fired
}

// Pending returns how many events are still scheduled.
func (q *TimerQueue) Pending() int {
	return q.events.Len()
}

// PendingNamed counts scheduled events carrying the given name.
func (q *TimerQueue) PendingNamed(name string) int {
	n := 0
	for _, t := range q.events {
		if t.name == name {
			n++
		}
	}
	return n
}

// CancelAll drops every pending event.
func (q *TimerQueue) CancelAll() {
	for _, t := range q.events {
		t.cancelled = true
		t.index = -1
	}
	q.events = nil
}
