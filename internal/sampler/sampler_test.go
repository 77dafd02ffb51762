package sampler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gridwatch/powerdash/internal/domain"
)

func fixedFetch(readings []domain.PowerReading) FetchFunc {
	return func(ctx context.Context) ([]domain.PowerReading, error) {
		return readings, nil
	}
}

func window(powers ...float64) []domain.PowerReading {
	out := make([]domain.PowerReading, len(powers))
	for i, p := range powers {
		out[i] = domain.PowerReading{ID: int64(i + 1), PowerWatts: p}
	}
	return out
}

func TestAdvanceWrapsAroundWindow(t *testing.T) {
	for _, length := range []int{1, 2, 7} {
		s := New(fixedFetch(window(make([]float64, length)...)), time.Hour, time.Hour)
		s.Refresh(context.Background())

		start := s.Snapshot().FocusIndex
		for i := 0; i < length; i++ {
			s.AdvanceFocus()
		}
		if got := s.Snapshot().FocusIndex; got != start {
			t.Errorf("length %d: %d advances moved focus from %d to %d, want a full cycle",
				length, length, start, got)
		}
	}
}

func TestAdvanceOnEmptyBufferIsNoop(t *testing.T) {
	s := New(fixedFetch(nil), time.Hour, time.Hour)
	s.AdvanceFocus()
	snap := s.Snapshot()
	if snap.FocusIndex != 0 {
		t.Errorf("focus = %d, want 0", snap.FocusIndex)
	}
	if snap.Focus != nil {
		t.Error("expected no focused sample for an empty buffer")
	}
}

func TestRefreshClampsFocusWhenWindowShrinks(t *testing.T) {
	readings := window(100, 200)
	var mu sync.Mutex
	fetch := func(ctx context.Context) ([]domain.PowerReading, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make([]domain.PowerReading, len(readings))
		copy(out, readings)
		return out, nil
	}

	s := New(fetch, time.Hour, time.Hour)
	s.Refresh(context.Background())
	s.AdvanceFocus()
	if got := s.Snapshot().FocusIndex; got != 1 {
		t.Fatalf("focus = %d, want 1", got)
	}

	mu.Lock()
	readings = window(300)
	mu.Unlock()
	s.Refresh(context.Background())

	snap := s.Snapshot()
	if snap.FocusIndex != 0 {
		t.Errorf("focus = %d after shrink, want 0", snap.FocusIndex)
	}
	if snap.Focus == nil || snap.Focus.PowerWatts != 300 {
		t.Errorf("focused sample = %+v, want the new window's only sample", snap.Focus)
	}

	s.AdvanceFocus()
	if got := s.Snapshot().FocusIndex; got != 0 {
		t.Errorf("focus = %d after advance on length-1 window, want 0", got)
	}
}

func TestFailedRefreshKeepsStaleWindow(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) ([]domain.PowerReading, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("connection refused")
		}
		return window(100, 200), nil
	}

	s := New(fetch, time.Hour, time.Hour)
	s.Refresh(context.Background())
	if snap := s.Snapshot(); !snap.Connected || len(snap.Buffer) != 2 {
		t.Fatalf("unexpected state after first refresh: %+v", snap)
	}

	s.Refresh(context.Background())
	snap := s.Snapshot()
	if snap.Connected {
		t.Error("connected should be false after a failed refresh")
	}
	if len(snap.Buffer) != 2 {
		t.Errorf("buffer length = %d, want the stale window of 2", len(snap.Buffer))
	}
	if snap.Buffer[0].PowerWatts != 100 {
		t.Errorf("stale buffer corrupted: %+v", snap.Buffer)
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	call := 0
	fetch := func(ctx context.Context) ([]domain.PowerReading, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		if n == 1 {
			close(inFlight)
			<-release
			return window(1), nil // slow, overtaken response
		}
		return window(10, 20), nil
	}

	s := New(fetch, time.Hour, time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Refresh(context.Background())
	}()

	// Wait for the slow refresh to be in flight, then let a newer one win.
	<-inFlight
	s.Refresh(context.Background())
	close(release)
	wg.Wait()

	snap := s.Snapshot()
	if len(snap.Buffer) != 2 {
		t.Fatalf("buffer length = %d, want the newer window of 2", len(snap.Buffer))
	}
	if snap.Buffer[0].PowerWatts != 10 {
		t.Errorf("stale response clobbered the newer one: %+v", snap.Buffer)
	}
}

func TestOnUpdateFiresForRefreshAndAdvance(t *testing.T) {
	var got []Snapshot
	s := New(fixedFetch(window(100, 200)), time.Hour, time.Hour)
	s.OnUpdate(func(snap Snapshot) { got = append(got, snap) })

	s.Refresh(context.Background())
	s.AdvanceFocus()

	if len(got) != 2 {
		t.Fatalf("got %d updates, want 2", len(got))
	}
	if got[0].FocusIndex != 0 || got[1].FocusIndex != 1 {
		t.Errorf("focus sequence = %d,%d, want 0,1", got[0].FocusIndex, got[1].FocusIndex)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	var mu sync.Mutex
	updates := 0

	s := New(fixedFetch(window(100)), 5*time.Millisecond, 3*time.Millisecond)
	s.OnUpdate(func(Snapshot) {
		mu.Lock()
		updates++
		mu.Unlock()
	})

	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	mu.Lock()
	after := updates
	mu.Unlock()
	if after == 0 {
		t.Fatal("expected updates while running")
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if updates != after {
		t.Errorf("updates continued after Stop: %d -> %d", after, updates)
	}
}
