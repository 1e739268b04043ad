package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_clockCounts(t *testing.T) {
	n := NewNotifier()
	assert.Equal(t, 0, n.Clock())
	assert.Equal(t, 1, n.Bump())
	assert.Equal(t, 2, n.Bump())
	assert.Equal(t, 2, n.Clock())
}

func TestNotifier_wakesOnBump(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()

	go func() {
		time.Sleep(20 * time.Millisecond)
		n.Bump()
	}()

	start := time.Now()
	clock := sub.Wait(context.Background(), 0, 5*time.Second)
	assert.Equal(t, 1, clock)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNotifier_immediateWhenBehind(t *testing.T) {
	n := NewNotifier()
	n.Bump()
	n.Bump()

	sub := n.Subscribe()
	clock := sub.Wait(context.Background(), 1, 5*time.Second)
	assert.Equal(t, 2, clock)
}

func TestNotifier_timesOut(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()

	start := time.Now()
	clock := sub.Wait(context.Background(), 0, 30*time.Millisecond)
	assert.Equal(t, 0, clock)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestNotifier_cancelReleases(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	clock := sub.Wait(ctx, 0, 5*time.Second)
	assert.Equal(t, 0, clock)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNotifier_wakesEveryWaiter(t *testing.T) {
	n := NewNotifier()

	results := make(chan int, 5)
	for i := 0; i < 5; i++ {
		sub := n.Subscribe()
		go func() {
			results <- sub.Wait(context.Background(), 0, 5*time.Second)
		}()
	}

	// give the waiters a moment to park
	time.Sleep(20 * time.Millisecond)
	n.Bump()

	for i := 0; i < 5; i++ {
		select {
		case clock := <-results:
			require.Equal(t, 1, clock)
		case <-time.After(time.Second):
			t.Fatal("waiter starved")
		}
	}
}
