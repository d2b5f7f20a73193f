package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsDueTasksInOrder(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	fired := make(chan string, 2)
	now := time.Now()
	s.Schedule(now.Add(60*time.Millisecond), func() { fired <- "later" })
	s.Schedule(now.Add(20*time.Millisecond), func() { fired <- "sooner" })

	assert.Equal(t, "sooner", waitFor(t, fired))
	assert.Equal(t, "later", waitFor(t, fired))
}

// A task scheduled earlier than the current heap head must wake the sweep,
// not wait behind it.
func TestSchedulerWakesForEarlierTask(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	fired := make(chan string, 1)
	s.Schedule(time.Now().Add(time.Hour), func() {})

	time.Sleep(10 * time.Millisecond)
	s.Schedule(time.Now().Add(20*time.Millisecond), func() { fired <- "near" })

	assert.Equal(t, "near", waitFor(t, fired))
}

func TestSchedulerEveryRepeats(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	ticks := make(chan string, 16)
	s.Every(15*time.Millisecond, func() { ticks <- "tick" })

	for i := 0; i < 3; i++ {
		waitFor(t, ticks)
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan string, 1)
	go func() {
		s.Run(ctx)
		done <- "stopped"
	}()

	cancel()
	assert.Equal(t, "stopped", waitFor(t, done))
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scheduler task")
		return ""
	}
}
