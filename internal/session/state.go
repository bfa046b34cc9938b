package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/livecaption/internal/observe"
	"github.com/foxseedlab/livecaption/internal/segmenter"
	"github.com/foxseedlab/livecaption/internal/stitcher"
	"github.com/foxseedlab/livecaption/internal/webhook"
)

const fragmentLogCap = 10000

type loggedFragment struct {
	seq          uint64
	recognizedAt time.Time
	text         string
	translation  string
}

// sessionState is everything one session accumulates. It is reset at the
// start of every session and read once more at finalization.
type sessionState struct {
	id        string
	startedAt time.Time

	framesReceived    atomic.Int64
	segmentsEmitted   atomic.Int64
	segmentsDiscarded atomic.Int64
	forcedFlushes     atomic.Int64
	fragmentsMerged   atomic.Int64
	emptyResults      atomic.Int64
	emptyStreak       atomic.Int64

	mu        sync.Mutex
	fragments []loggedFragment
	dropped   int
}

func newSessionState(id string, startedAt time.Time) *sessionState {
	return &sessionState{id: id, startedAt: startedAt}
}

func (s *sessionState) logFragment(f stitcher.Fragment, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fragments) >= fragmentLogCap {
		s.dropped++
		return
	}
	s.fragments = append(s.fragments, loggedFragment{
		seq:          f.Seq,
		recognizedAt: at,
		text:         f.Text,
		translation:  f.Translation,
	})
}

func (s *sessionState) fragmentLog() []loggedFragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]loggedFragment, len(s.fragments))
	copy(out, s.fragments)
	return out
}

func (s *sessionState) stats() webhook.TranscriptWebhookStats {
	return webhook.TranscriptWebhookStats{
		FramesReceived:    s.framesReceived.Load(),
		SegmentsEmitted:   s.segmentsEmitted.Load(),
		SegmentsDiscarded: s.segmentsDiscarded.Load(),
		ForcedFlushes:     s.forcedFlushes.Load(),
		FragmentsMerged:   s.fragmentsMerged.Load(),
		EmptyResults:      s.emptyResults.Load(),
	}
}

// pipelineObserver feeds segmenter, emitter and stitcher events into the
// session counters and the OTel instruments.
type pipelineObserver struct {
	state   *sessionState
	metrics *observe.Metrics
	now     func() time.Time
}

func (o *pipelineObserver) SegmentEmitted(seg segmenter.Segment) {
	o.state.segmentsEmitted.Add(1)
	if o.metrics != nil {
		o.metrics.RecordSegmentEmitted(context.Background(), seg.Forced, seg.Duration())
	}
}

func (o *pipelineObserver) SegmentDiscarded(segmenter.Segment) {
	o.state.segmentsDiscarded.Add(1)
	if o.metrics != nil {
		o.metrics.RecordSegmentDiscarded(context.Background())
	}
}

func (o *pipelineObserver) ForcedFlushRaised() {
	o.state.forcedFlushes.Add(1)
	if o.metrics != nil {
		o.metrics.RecordForcedFlush(context.Background())
	}
}

func (o *pipelineObserver) Transcribed(_ uint64, elapsed time.Duration, err error) {
	if err != nil {
		o.state.emptyResults.Add(1)
		o.state.emptyStreak.Add(1)
	} else {
		o.state.emptyStreak.Store(0)
	}
	if o.metrics != nil {
		o.metrics.RecordCall(context.Background(), observe.KindSTT, elapsed, callReason(err))
	}
}

func (o *pipelineObserver) Translated(_ uint64, elapsed time.Duration, err error) {
	if o.metrics != nil {
		o.metrics.RecordCall(context.Background(), observe.KindTranslate, elapsed, callReason(err))
	}
}

func (o *pipelineObserver) FragmentApplied(f stitcher.Fragment, _ stitcher.State, changed bool) {
	if f.Text != "" {
		o.state.logFragment(f, o.now())
	}
	if !changed {
		return
	}
	o.state.fragmentsMerged.Add(1)
	if o.metrics != nil {
		o.metrics.RecordFragmentMerged(context.Background())
	}
}
