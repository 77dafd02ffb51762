package poller

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRunFiresImmediatelyThenOnTicks(t *testing.T) {
	var mu sync.Mutex
	runs := 0

	task := Run(context.Background(), "test", 5*time.Millisecond, func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
	})
	defer task.Stop()

	time.Sleep(25 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if runs < 2 {
		t.Errorf("got %d runs, want the immediate run plus ticks", runs)
	}
}

func TestStopEndsDelivery(t *testing.T) {
	var mu sync.Mutex
	runs := 0

	task := Run(context.Background(), "test", 5*time.Millisecond, func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	time.Sleep(15 * time.Millisecond)
	task.Stop()
	task.Stop() // idempotent

	mu.Lock()
	after := runs
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if runs != after {
		t.Errorf("runs continued after Stop: %d -> %d", after, runs)
	}
}

func TestParentContextCancelStopsTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var once sync.Once
	task := Run(ctx, "test", time.Millisecond, func(context.Context) {
		once.Do(func() { close(started) })
	})

	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		task.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after parent context cancel")
	}
}

func TestFnReceivesCancelledContextOnStop(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	var gotCancel bool
	var mu sync.Mutex

	task := Run(context.Background(), "test", time.Hour, func(ctx context.Context) {
		once.Do(func() { close(entered) })
		<-block
		mu.Lock()
		gotCancel = ctx.Err() != nil
		mu.Unlock()
	})

	<-entered
	go func() {
		// Let Stop cancel the context, then release the handler.
		time.Sleep(10 * time.Millisecond)
		close(block)
	}()
	task.Stop()

	mu.Lock()
	defer mu.Unlock()
	if !gotCancel {
		t.Error("fn's context was not cancelled by Stop")
	}
}
