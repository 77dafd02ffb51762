// Package sampler keeps a bounded window of the most recent meter samples and
// independently cycles which sample the single-value widgets focus on. Two
// unsynchronized timers drive it: one refreshes the window from the collector,
// the other advances the focus.
package sampler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gridwatch/powerdash/internal/domain"
)

type FetchFunc func(ctx context.Context) ([]domain.PowerReading, error)

// Snapshot is an immutable view of the sampler state, safe to hand to
// template rendering and websocket broadcast.
type Snapshot struct {
	Buffer     []domain.PowerReading `json:"buffer"`
	FocusIndex int                   `json:"focusIndex"`
	Focus      *domain.PowerReading  `json:"focus,omitempty"`
	Connected  bool                  `json:"connected"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

type Sampler struct {
	fetch        FetchFunc
	refreshEvery time.Duration
	advanceEvery time.Duration

	mu        sync.Mutex
	buffer    []domain.PowerReading
	focus     int
	connected bool
	seq       uint64
	onUpdate  func(Snapshot)

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(fetch FetchFunc, refreshEvery, advanceEvery time.Duration) *Sampler {
	return &Sampler{
		fetch:        fetch,
		refreshEvery: refreshEvery,
		advanceEvery: advanceEvery,
		stopCh:       make(chan struct{}),
	}
}

// OnUpdate registers a callback invoked with a fresh snapshot after every
// applied refresh and every focus advance. Must be set before Start.
func (s *Sampler) OnUpdate(fn func(Snapshot)) { s.onUpdate = fn }

// Start launches the refresh and advance timers. The first refresh fires
// immediately rather than one period in.
func (s *Sampler) Start(ctx context.Context) {
	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		s.Refresh(ctx)
		ticker := time.NewTicker(s.refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Refresh(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.advanceEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.AdvanceFocus()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels both timers and waits for them. Idempotent.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Refresh fetches the latest window and replaces the buffer atomically. On
// failure the previous buffer stays visible and only the connected flag
// drops. Refreshes are sequence-stamped so a slow response that was overtaken
// by a newer one is discarded instead of clobbering it.
func (s *Sampler) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	readings, err := s.fetch(ctx)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.connected = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		log.Warn().Err(err).Msg("sample refresh failed, keeping stale window")
		s.notify(snap)
		return
	}
	s.buffer = readings
	s.connected = true
	if len(s.buffer) == 0 {
		s.focus = 0
	} else if s.focus >= len(s.buffer) {
		// The new window may be shorter than the old one.
		s.focus = s.focus % len(s.buffer)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// AdvanceFocus moves the focus to the next sample, wrapping at the end of the
// window. No-op while the buffer is empty.
func (s *Sampler) AdvanceFocus() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	s.focus = (s.focus + 1) % len(s.buffer)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Sampler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sampler) snapshotLocked() Snapshot {
	snap := Snapshot{
		Buffer:     make([]domain.PowerReading, len(s.buffer)),
		FocusIndex: s.focus,
		Connected:  s.connected,
		UpdatedAt:  time.Now(),
	}
	copy(snap.Buffer, s.buffer)
	if s.focus < len(snap.Buffer) {
		r := snap.Buffer[s.focus]
		snap.Focus = &r
	}
	return snap
}

func (s *Sampler) notify(snap Snapshot) {
	if s.onUpdate != nil {
		s.onUpdate(snap)
	}
}
