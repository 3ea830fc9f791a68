// Package sched implements a single-threaded cooperative event scheduler:
// no lock is required for the LSDB or neighbor tables because all mutation
// happens in scheduled callbacks that run to completion on one goroutine.
// Timers live in a min-heap keyed by deadline; immediate events and
// readiness callbacks are funneled through a single channel so the Run loop
// only ever does one thing at a time.
package sched

import (
	"container/heap"
	"context"
	"time"
)

// A Func is a unit of work run by the Scheduler. It always runs on the
// Scheduler's single goroutine, so it may freely mutate LSDBs, neighbor
// tables, and interface state without additional synchronization.
type Func func()

// A Scheduler runs Funcs one at a time, either immediately (AddEvent) or at
// a future deadline (AddTimer).
type Scheduler struct {
	now    func() time.Time
	events chan Func
	timers *timerHeap

	// pending holds Funcs that Run executes once before entering its loop;
	// nothing in this package appends to it, and AddEvent uses events.
	pending []Func
}

// New creates a Scheduler. now is injected so tests can supply a fake clock;
// production callers pass time.Now.
func New(now func() time.Time) *Scheduler {
	return &Scheduler{
		now:    now,
		events: make(chan Func, 64),
		timers: &timerHeap{},
	}
}

// AddEvent queues fn to run on the Scheduler's goroutine as soon as
// possible, ahead of any pending timers. Safe to call from other
// goroutines (e.g. a per-interface socket reader). AddEvent blocks while 64
// events are already queued and not yet taken by Run.
func (s *Scheduler) AddEvent(fn Func) {
	s.events <- fn
}

// A Timer is a cancelable, resettable deadline-triggered Func registration.
type Timer struct {
	s        *Scheduler
	deadline time.Time
	fn       Func
	index    int
	canceled bool
}

// AddTimer arms fn to run once, after d elapses.
func (s *Scheduler) AddTimer(d time.Duration, fn Func) *Timer {
	t := &Timer{s: s, deadline: s.now().Add(d), fn: fn}
	heap.Push(s.timers, t)
	return t
}

// Cancel prevents a pending Timer from firing. Canceling an already-fired or
// already-canceled Timer is a no-op; cancellation never fails.
func (t *Timer) Cancel() {
	if t.canceled || t.index < 0 {
		return
	}
	t.canceled = true
	heap.Remove(t.s.timers, t.index)
}

// Reset reschedules t to fire d from now, re-arming it if it had already
// fired or been canceled.
func (t *Timer) Reset(d time.Duration) {
	if !t.canceled && t.index >= 0 {
		heap.Remove(t.s.timers, t.index)
	}
	t.canceled = false
	t.deadline = t.s.now().Add(d)
	heap.Push(t.s.timers, t)
}

// Run executes queued events and due timers until ctx is canceled. It is the
// only goroutine that should ever touch scheduler-owned state.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, fn := range s.pending {
		fn()
	}
	s.pending = nil

	for {
		// Queued events run before any timer, including one already due.
		select {
		case fn := <-s.events:
			fn()
			continue
		default:
		}

		var (
			fireC <-chan time.Time
			wake  *time.Timer
		)
		if s.timers.Len() > 0 {
			d := (*s.timers)[0].deadline.Sub(s.now())
			if d < 0 {
				d = 0
			}
			wake = time.NewTimer(d)
			fireC = wake.C
		}

		select {
		case <-ctx.Done():
			if wake != nil {
				wake.Stop()
			}
			return ctx.Err()
		case fn := <-s.events:
			if wake != nil {
				wake.Stop()
			}
			fn()
		case <-fireC:
			t := heap.Pop(s.timers).(*Timer)
			t.canceled = true
			t.fn()
		}
	}
}

// timerHeap implements container/heap.Interface ordered by deadline.
type timerHeap []*Timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
