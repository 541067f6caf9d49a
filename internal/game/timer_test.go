package game

import (
	"strings"
	"testing"
	"time"
)

func TestTimerQueueOrder(t *testing.T) {
	q := NewTimerQueue()
	var got []string
	q.Schedule("c", 3*time.Second, func() { got = append(got, "c") })
	q.Schedule("a", time.Second, func() { got = append(got, "a") })
	q.Schedule("b", time.Second, func() { got = append(got, "b") })

	if n := q.Advance(999 * time.Millisecond); n != 0 {
		t.Fatalf("fired %d before due", n)
	}
	if n := q.Advance(time.Millisecond); n != 2 {
		t.Fatalf("fired %d at 1s, want 2", n)
	}
	q.Advance(5 * time.Second)
	if s := strings.Join(got, ""); s != "abc" {
		t.Errorf("order = %s, want abc (ties in scheduling order)", s)
	}
	if q.Now() != 6*time.Second {
		t.Errorf("Now = %v", q.Now())
	}
}

func TestTimerCancel(t *testing.T) {
	q := NewTimerQueue()
	fired := false
	timer := q.Schedule("turn_change", time.Second, func() { fired = true })
	q.Schedule("other", 2*time.Second, nil)

	if q.PendingNamed("turn_change") != 1 {
		t.Fatal("timer not pending")
	}
	if !timer.Cancel() {
		t.Fatal("Cancel returned false")
	}
	if timer.Cancel() {
		t.Error("second Cancel returned true")
	}
	q.Advance(3 * time.Second)
	if fired {
		t.Error("cancelled timer fired")
	}
	if q.Pending() != 0 {
		t.Errorf("Pending = %d", q.Pending())
	}

	var nilTimer *Timer
	if nilTimer.Pending() || nilTimer.Cancel() || nilTimer.Name() != "" {
		t.Error("nil timer not inert")
	}
}

func TestTimerChainedZeroDelay(t *testing.T) {
	q := NewTimerQueue()
	steps := 0
	q.Schedule("first", time.Second, func() {
		steps++
		q.Schedule("second", 0, func() { steps++ })
	})
	if n := q.Advance(time.Second); n != 2 || steps != 2 {
		t.Errorf("fired %d, steps %d; want both in one Advance", n, steps)
	}
}

func TestTimerCancelAll(t *testing.T) {
	q := NewTimerQueue()
	a := q.Schedule("a", time.Second, func() { t.Error("a fired") })
	q.Schedule("b", time.Second, func() { t.Error("b fired") })
	q.CancelAll()
	q.Advance(time.Minute)
	if a.Pending() {
		t.Error("timer still pending after CancelAll")
	}
}
