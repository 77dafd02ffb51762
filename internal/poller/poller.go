// Package poller runs a function at a fixed interval with an explicit
// stop handle, so each dashboard page owns and releases its own polling
// lifecycle instead of leaking timers on teardown.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Task struct {
	name     string
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
}

// Run fires fn once immediately, then on every tick of the interval, until
// Stop is called or the parent context is cancelled. fn receives a context
// that is cancelled when the task stops.
func Run(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		name:   name,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(t.done)
		defer cancel()

		fn(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn(ctx)
			case <-t.stopCh:
				log.Debug().Str("task", name).Msg("poller stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return t
}

// Stop cancels the task and waits for the in-flight run to finish.
// Idempotent.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		t.cancel()
	})
	<-t.done
}
