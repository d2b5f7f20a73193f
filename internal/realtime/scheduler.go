package realtime

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Scheduler is a single sweep loop over a min-heap of due times. It replaces
// one-shot per-event timers: tasks are re-derivable (highlight removal comes
// from creation time + TTL) and firing is idempotent, so a missed or double
// sweep cannot corrupt state.
type Scheduler struct {
	mu      sync.Mutex
	entries entryHeap
	wake    chan struct{}
}

type entry struct {
	due time.Time
	run func()
}

type entryHeap []*entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		wake: make(chan struct{}, 1),
	}
}

// Schedule enqueues a task to run at or after due. Tasks run on the sweep
// goroutine; anything slow should spawn its own goroutine.
func (s *Scheduler) Schedule(due time.Time, run func()) {
	s.mu.Lock()
	heap.Push(&s.entries, &entry{due: due, run: run})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Every schedules a recurring task. The next occurrence is enqueued before
// the task runs, so a panic-free slow task cannot drift the period by more
// than its own duration.
func (s *Scheduler) Every(interval time.Duration, run func()) {
	var tick func()
	tick = func() {
		s.Schedule(time.Now().Add(interval), tick)
		run()
	}
	s.Schedule(time.Now().Add(interval), tick)
}

// Run drives the sweep loop until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.mu.Lock()
		var wait time.Duration
		if len(s.entries) == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(s.entries[0].due)
		}
		s.mu.Unlock()

		if wait > 0 {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(wait)

			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			case <-timer.C:
			}
		}

		for _, task := range s.takeDue(time.Now()) {
			task()
		}
	}
}

func (s *Scheduler) takeDue(now time.Time) []func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []func()
	for len(s.entries) > 0 && !s.entries[0].due.After(now) {
		e := heap.Pop(&s.entries).(*entry)
		due = append(due, e.run)
	}
	return due
}
