package stitcher

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/foxseedlab/livecaption/internal/caption"
)

// Fragment is the recognition result for one segment. An empty Text marks a
// failed or empty recognition and is skipped without touching the state.
type Fragment struct {
	Seq         uint64
	Text        string
	Translation string
}

// Observer sees every fragment once it has been applied in order.
type Observer interface {
	FragmentApplied(f Fragment, st State, changed bool)
}

type Option func(*Stitcher)

func WithObserver(o Observer) Option {
	return func(s *Stitcher) {
		s.observer = o
	}
}

type appliedFragment struct {
	fragment Fragment
	state    State
	changed  bool
}

// Stitcher applies fragments to the session transcript strictly in
// sequence order, whatever order they arrive in.
type Stitcher struct {
	opts     Options
	sink     caption.Sink
	observer Observer

	// submitMu keeps sink notifications in merge order across callers.
	submitMu sync.Mutex

	mu      sync.Mutex
	state   State
	next    uint64
	pending map[uint64]Fragment
	applied uint64
	merged  uint64
}

func New(opts Options, sink caption.Sink, options ...Option) *Stitcher {
	s := &Stitcher{
		opts:    opts,
		sink:    sink,
		next:    1,
		pending: make(map[uint64]Fragment),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *Stitcher) Run(ctx context.Context, in <-chan Fragment) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-in:
			if !ok {
				return nil
			}
			s.Submit(f)
		}
	}
}

// Submit queues f and applies every fragment that is now next in sequence.
func (s *Stitcher) Submit(f Fragment) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	s.mu.Lock()
	if f.Seq < s.next {
		s.mu.Unlock()
		slog.Warn("dropping stale fragment", "seq", f.Seq, "next_seq", s.next)
		return
	}
	s.pending[f.Seq] = f

	var done []appliedFragment
	for {
		next, ok := s.pending[s.next]
		if !ok {
			break
		}
		delete(s.pending, s.next)
		s.next++
		s.applied++
		st, changed := s.applyLocked(next)
		done = append(done, appliedFragment{fragment: next, state: st, changed: changed})
	}
	s.mu.Unlock()

	for _, a := range done {
		if s.observer != nil {
			s.observer.FragmentApplied(a.fragment, a.state, a.changed)
		}
		if a.changed && s.sink != nil {
			s.sink.OnTranscriptUpdated(a.state.Transcription, a.state.Translation)
		}
	}
}

func (s *Stitcher) applyLocked(f Fragment) (State, bool) {
	if strings.TrimSpace(f.Text) == "" {
		return s.state, false
	}
	st, changed := Merge(s.state, f.Text, f.Translation, s.opts)
	s.state = st
	if changed {
		s.merged++
	}
	slog.Debug("fragment stitched", "seq", f.Seq, "changed", changed, "transcript_len", len(st.Transcription))
	return st, changed
}

func (s *Stitcher) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns how many fragments were applied in order and how many of
// them changed the transcript.
func (s *Stitcher) Stats() (applied, merged uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied, s.merged
}

// Pending is the number of fragments waiting for an earlier sequence number.
func (s *Stitcher) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Stitcher) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.next = 1
	s.applied = 0
	s.merged = 0
	clear(s.pending)
}
