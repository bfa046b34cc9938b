package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
)

// PCMSource reads interleaved 16-bit little-endian PCM, for example from
// `arecord -f S16_LE` or `ffmpeg -f s16le` piped to stdin.
type PCMSource struct {
	r            io.Reader
	sampleRate   int
	channels     int
	blockSamples int
}

func NewPCMSource(r io.Reader, sampleRate, channels int, block time.Duration) *PCMSource {
	blockSamples := audio.DurationSamples(block, sampleRate)
	if blockSamples <= 0 {
		blockSamples = 1
	}
	if channels <= 0 {
		channels = 1
	}
	return &PCMSource{
		r:            r,
		sampleRate:   sampleRate,
		channels:     channels,
		blockSamples: blockSamples,
	}
}

func (s *PCMSource) SampleRate() int {
	return s.sampleRate
}

func (s *PCMSource) BlockSamples() int {
	return s.blockSamples
}

func (s *PCMSource) Start(ctx context.Context, onFrame func(audio.Frame)) error {
	var stopped atomic.Bool
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.pump(&stopped, onFrame)
	}()

	select {
	case <-ctx.Done():
		stopped.Store(true)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *PCMSource) pump(stopped *atomic.Bool, onFrame func(audio.Frame)) error {
	buf := make([]byte, s.blockSamples*s.channels*2)
	var seq uint64
	for {
		n, err := io.ReadFull(s.r, buf)
		if n > 0 && !stopped.Load() {
			seq++
			onFrame(audio.Frame{Seq: seq, Samples: audio.PCM16ToMono(buf[:n], s.channels)})
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("pcm input ended after %d frames: %w", seq, audio.ErrSourceClosed)
		default:
			return fmt.Errorf("read pcm input: %w", err)
		}
		if stopped.Load() {
			return nil
		}
	}
}
