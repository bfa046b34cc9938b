package audio

import (
	"context"
	"errors"
	"math"
	"time"
)

var ErrSourceClosed = errors.New("audio source closed")

// Frame is one captured block of mono samples normalized to [-1, 1].
type Frame struct {
	Seq     uint64
	Samples []float32
}

func (f Frame) Len() int {
	return len(f.Samples)
}

func (f Frame) Duration(sampleRate int) time.Duration {
	return SamplesDuration(len(f.Samples), sampleRate)
}

// FrameSource delivers frames to onFrame until ctx is cancelled, in which
// case Start returns nil, or until capture fails. onFrame must not block.
type FrameSource interface {
	Start(ctx context.Context, onFrame func(Frame)) error
	SampleRate() int
}

func SamplesDuration(n, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(sampleRate)
}

func DurationSamples(d time.Duration, sampleRate int) int {
	if d <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

func Flatten(frames []Frame) []float32 {
	n := 0
	for _, f := range frames {
		n += len(f.Samples)
	}
	out := make([]float32, 0, n)
	for _, f := range frames {
		out = append(out, f.Samples...)
	}
	return out
}
