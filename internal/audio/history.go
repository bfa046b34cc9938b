package audio

import "time"

// HistoryRing keeps the most recently emitted frames so the next segment can
// be prefixed with overlap audio. It is not safe for concurrent use.
type HistoryRing struct {
	frames   []Frame
	capacity int
}

func NewHistoryRing(capacity int) *HistoryRing {
	if capacity < 0 {
		capacity = 0
	}
	return &HistoryRing{
		frames:   make([]Frame, 0, capacity),
		capacity: capacity,
	}
}

// Record appends frames and evicts the oldest ones beyond capacity.
func (r *HistoryRing) Record(frames ...Frame) {
	if r.capacity == 0 || len(frames) == 0 {
		return
	}
	if len(frames) >= r.capacity {
		r.frames = append(r.frames[:0], frames[len(frames)-r.capacity:]...)
		return
	}
	if over := len(r.frames) + len(frames) - r.capacity; over > 0 {
		r.frames = append(r.frames[:0], r.frames[over:]...)
	}
	r.frames = append(r.frames, frames...)
}

// Prefix returns the shortest run of most recent frames covering overlap, or
// everything held when the ring is shorter. The ring is left unchanged.
func (r *HistoryRing) Prefix(overlap time.Duration, sampleRate int) []Frame {
	need := DurationSamples(overlap, sampleRate)
	if need == 0 || len(r.frames) == 0 {
		return nil
	}
	start := len(r.frames)
	got := 0
	for start > 0 && got < need {
		start--
		got += r.frames[start].Len()
	}
	out := make([]Frame, len(r.frames)-start)
	copy(out, r.frames[start:])
	return out
}

func (r *HistoryRing) Len() int {
	return len(r.frames)
}

func (r *HistoryRing) Cap() int {
	return r.capacity
}

func (r *HistoryRing) Reset() {
	clear(r.frames)
	r.frames = r.frames[:0]
}
