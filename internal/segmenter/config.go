package segmenter

import (
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
)

const maxOverlapRatio = 0.9

type Config struct {
	SampleRate          int
	BlockSamples        int
	SegmentDuration     time.Duration
	Overlap             time.Duration
	SilenceThreshold    float64
	ForcedFlushInterval time.Duration
	WatchdogInterval    time.Duration
	ProcessorWait       time.Duration
	HistoryCap          int
	RetainedTail        int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:          44100,
		BlockSamples:        1323,
		SegmentDuration:     1500 * time.Millisecond,
		SilenceThreshold:    0.005,
		ForcedFlushInterval: 3 * time.Second,
		WatchdogInterval:    2 * time.Second,
		ProcessorWait:       500 * time.Millisecond,
		HistoryCap:          20,
		RetainedTail:        2,
	}
}

// EffectiveOverlap clamps the configured overlap to 90% of a segment.
func (c Config) EffectiveOverlap() time.Duration {
	limit := time.Duration(float64(c.SegmentDuration) * maxOverlapRatio)
	switch {
	case c.Overlap < 0:
		return 0
	case c.Overlap > limit:
		return limit
	default:
		return c.Overlap
	}
}

// SizeGuard is the number of blocks one segment duration should hold. The
// active buffer growing past it closes the segment even if the clock lags.
func (c Config) SizeGuard() int {
	if c.BlockSamples <= 0 {
		return 0
	}
	n := audio.DurationSamples(c.SegmentDuration, c.SampleRate)
	return (n + c.BlockSamples - 1) / c.BlockSamples
}

// StallAfter is how long without an emission the watchdog tolerates before
// forcing one.
func (c Config) StallAfter() time.Duration {
	return 2 * c.ForcedFlushInterval
}
