package segmenter

import (
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
)

type State int

const (
	StateAccumulating State = iota
	StateClosing
	StateEmitted
)

func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateClosing:
		return "closing"
	case StateEmitted:
		return "emitted"
	default:
		return "unknown"
	}
}

type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomeDiscarded
	OutcomeEmitted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeEmitted:
		return "emitted"
	default:
		return "unknown"
	}
}

// Segment is a closed run of frames ready for recognition. Seq is assigned
// only to emitted segments and increases by one per emission.
type Segment struct {
	Seq        uint64
	Frames     []audio.Frame
	PrefixLen  int
	Energy     float64
	Forced     bool
	SampleRate int
	ClosedAt   time.Time
}

func (s Segment) Samples() []float32 {
	return audio.Flatten(s.Frames)
}

func (s Segment) Duration() time.Duration {
	n := 0
	for _, f := range s.Frames {
		n += f.Len()
	}
	return audio.SamplesDuration(n, s.SampleRate)
}

// Policy decides when the active buffer becomes a segment. It owns the
// active buffer, the history ring and the boundary clock, and must be
// guarded by its caller.
type Policy struct {
	cfg       Config
	overlap   time.Duration
	sizeGuard int

	history      *audio.HistoryRing
	active       []audio.Frame
	state        State
	lastBoundary time.Time
	lastEmitted  time.Time
	forcePending bool
	seq          uint64
}

func NewPolicy(cfg Config, now time.Time) *Policy {
	p := &Policy{
		cfg:       cfg,
		overlap:   cfg.EffectiveOverlap(),
		sizeGuard: cfg.SizeGuard(),
		history:   audio.NewHistoryRing(cfg.HistoryCap),
	}
	p.Reset(now)
	return p
}

// Reset drops all buffered audio and restarts both clocks and the sequence.
func (p *Policy) Reset(now time.Time) {
	p.history.Reset()
	p.active = nil
	p.state = StateAccumulating
	p.lastBoundary = now
	p.lastEmitted = now
	p.forcePending = false
	p.seq = 0
}

// Append adds a frame to the active buffer and reports whether the duration
// or size trigger fired.
func (p *Policy) Append(f audio.Frame, now time.Time) bool {
	p.active = append(p.active, f)
	p.state = StateAccumulating
	if now.Sub(p.lastBoundary) >= p.cfg.SegmentDuration || len(p.active) > p.sizeGuard {
		p.lastBoundary = now
		return true
	}
	return false
}

// CheckStall raises one forced flush when nothing was emitted for
// StallAfter while audio is buffered. It does not raise a second one until
// the pending flush is consumed by an emission.
func (p *Policy) CheckStall(now time.Time) bool {
	if p.forcePending || len(p.active) == 0 {
		return false
	}
	if now.Sub(p.lastEmitted) < p.cfg.StallAfter() {
		return false
	}
	p.forcePending = true
	return true
}

// Close turns the active buffer into a segment prefixed with overlap audio.
// Silent segments are discarded unless a forced flush is pending.
func (p *Policy) Close(now time.Time) (Segment, Outcome) {
	if len(p.active) == 0 {
		return Segment{}, OutcomeEmpty
	}
	p.state = StateClosing

	prefix := p.history.Prefix(p.overlap, p.cfg.SampleRate)
	frames := make([]audio.Frame, 0, len(prefix)+len(p.active))
	frames = append(frames, prefix...)
	frames = append(frames, p.active...)

	seg := Segment{
		Frames:     frames,
		PrefixLen:  len(prefix),
		Energy:     audio.Energy(frames),
		Forced:     p.forcePending,
		SampleRate: p.cfg.SampleRate,
		ClosedAt:   now,
	}

	if audio.IsSilent(seg.Energy, p.cfg.SilenceThreshold) && !seg.Forced {
		p.active = p.tail(p.cfg.RetainedTail)
		p.state = StateAccumulating
		return seg, OutcomeDiscarded
	}

	p.seq++
	seg.Seq = p.seq

	keep := 0
	if len(p.active) > p.cfg.RetainedTail {
		keep = p.cfg.RetainedTail
	}
	p.history.Record(p.active[:len(p.active)-keep]...)
	p.active = p.tail(keep)
	p.lastBoundary = now
	p.lastEmitted = now
	p.forcePending = false
	p.state = StateEmitted
	return seg, OutcomeEmitted
}

// Discard drops the active buffer without emitting it.
func (p *Policy) Discard() {
	p.active = nil
	p.forcePending = false
	p.state = StateAccumulating
}

func (p *Policy) tail(n int) []audio.Frame {
	if n <= 0 {
		return nil
	}
	if n > len(p.active) {
		n = len(p.active)
	}
	out := make([]audio.Frame, n)
	copy(out, p.active[len(p.active)-n:])
	return out
}

func (p *Policy) State() State {
	return p.state
}

func (p *Policy) ActiveLen() int {
	return len(p.active)
}

func (p *Policy) HistoryLen() int {
	return p.history.Len()
}

func (p *Policy) ForcePending() bool {
	return p.forcePending
}

func (p *Policy) LastSeq() uint64 {
	return p.seq
}
