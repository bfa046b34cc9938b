package segmenter

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
	"golang.org/x/sync/errgroup"
)

// Observer receives boundary events. Calls happen on the processor and
// watchdog goroutines and must return quickly.
type Observer interface {
	SegmentEmitted(seg Segment)
	SegmentDiscarded(seg Segment)
	ForcedFlushRaised()
}

type nopObserver struct{}

func (nopObserver) SegmentEmitted(Segment)   {}
func (nopObserver) SegmentDiscarded(Segment) {}
func (nopObserver) ForcedFlushRaised()       {}

type Option func(*Segmenter)

func WithObserver(o Observer) Option {
	return func(s *Segmenter) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Segmenter) {
		if now != nil {
			s.now = now
		}
	}
}

// Segmenter runs the boundary policy against live capture. OnFrame is the
// capture callback; Run drives the processor and the watchdog.
type Segmenter struct {
	cfg      Config
	out      chan Segment
	now      func() time.Time
	observer Observer

	mu      sync.Mutex
	policy  *Policy
	wake    chan struct{}
	stopped atomic.Bool
}

func New(cfg Config, opts ...Option) *Segmenter {
	s := &Segmenter{
		cfg:      cfg,
		out:      make(chan Segment),
		now:      time.Now,
		observer: nopObserver{},
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.policy = NewPolicy(cfg, s.now())
	return s
}

// Segments yields emitted segments in sequence order. It is closed when Run
// returns.
func (s *Segmenter) Segments() <-chan Segment {
	return s.out
}

// OnFrame appends a captured frame. It never blocks on segment processing.
func (s *Segmenter) OnFrame(f audio.Frame) {
	if s.stopped.Load() {
		return
	}
	s.mu.Lock()
	fire := s.policy.Append(f, s.now())
	s.mu.Unlock()
	if fire {
		s.signal()
	}
}

func (s *Segmenter) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Segmenter) Run(ctx context.Context) error {
	defer close(s.out)
	defer s.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.process(gctx)
		return nil
	})
	g.Go(func() error {
		s.watch(gctx)
		return nil
	})
	return g.Wait()
}

// Stop makes the segmenter ignore further frames and drops any partially
// filled buffer.
func (s *Segmenter) Stop() {
	if s.stopped.Swap(true) {
		return
	}
	s.mu.Lock()
	dropped := s.policy.ActiveLen()
	s.policy.Discard()
	s.mu.Unlock()
	if dropped > 0 {
		slog.Debug("segmenter stopped with unsent audio", "dropped_frames", dropped)
	}
}

func (s *Segmenter) process(ctx context.Context) {
	timer := time.NewTimer(s.cfg.ProcessorWait)
	defer timer.Stop()

	for {
		woken := false
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			woken = true
		case <-timer.C:
		}
		timer.Reset(s.cfg.ProcessorWait)

		if s.stopped.Load() {
			return
		}
		if !woken && !s.forcePending() {
			continue
		}
		if !s.closeSegment(ctx) {
			return
		}
	}
}

func (s *Segmenter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.State()
}

func (s *Segmenter) forcePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.ForcePending()
}

func (s *Segmenter) closeSegment(ctx context.Context) bool {
	s.mu.Lock()
	seg, outcome := s.policy.Close(s.now())
	s.mu.Unlock()

	switch outcome {
	case OutcomeDiscarded:
		slog.Debug("segment below silence threshold", "energy", seg.Energy, "frames", len(seg.Frames))
		s.observer.SegmentDiscarded(seg)
	case OutcomeEmitted:
		slog.Debug("segment emitted",
			"seq", seg.Seq,
			"frames", len(seg.Frames),
			"prefix_frames", seg.PrefixLen,
			"energy", seg.Energy,
			"forced", seg.Forced,
		)
		s.observer.SegmentEmitted(seg)
		select {
		case s.out <- seg:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (s *Segmenter) watch(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.stopped.Load() {
			return
		}
		s.mu.Lock()
		raised := s.policy.CheckStall(s.now())
		s.mu.Unlock()
		if raised {
			slog.Debug("no segment emitted recently, forcing flush", "stall_after", s.cfg.StallAfter().String())
			s.observer.ForcedFlushRaised()
			s.signal()
		}
	}
}
