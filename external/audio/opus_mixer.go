package audio

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/foxseedlab/livecaption/internal/audio"
)

const (
	opusSampleRate      = 48000
	opusChannels        = 2
	frameSizeMs         = 20
	samplesPerFrame     = opusSampleRate * frameSizeMs * opusChannels / 1000
	maxQueuedPerSpeaker = 50
)

type opusDecoder interface {
	Decode(data []byte, pcm []int16) (int, error)
}

type decoderFactory func() (opusDecoder, error)

// OpusMixer decodes Opus packets per speaker and sums one 20ms frame from
// every speaker with queued audio.
type OpusMixer struct {
	newDecoder decoderFactory

	mu       sync.Mutex
	decoders map[string]opusDecoder
	queues   map[string]*frameQueue
	closed   bool
}

type frameQueue struct {
	frames [][]int16
}

func (q *frameQueue) push(frame []int16) {
	if len(q.frames) >= maxQueuedPerSpeaker {
		q.frames = q.frames[1:]
	}
	q.frames = append(q.frames, frame)
}

func (q *frameQueue) pop() ([]int16, bool) {
	if len(q.frames) == 0 {
		return nil, false
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f, true
}

func (q *frameQueue) hasFrame() bool {
	return len(q.frames) > 0
}

func NewOpusMixer() (audio.Mixer, error) {
	if _, err := newOpusDecoder(); err != nil {
		return nil, err
	}
	return newOpusMixer(newOpusDecoder), nil
}

func newOpusMixer(newDecoder decoderFactory) *OpusMixer {
	return &OpusMixer{
		newDecoder: newDecoder,
		decoders:   make(map[string]opusDecoder),
		queues:     make(map[string]*frameQueue),
	}
}

func (m *OpusMixer) WriteOpusPacket(speakerID string, opusData []byte) {
	if len(opusData) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	dec, ok := m.decoders[speakerID]
	if !ok {
		var err error
		dec, err = m.newDecoder()
		if err != nil {
			slog.Warn("opus decoder unavailable for speaker", "speaker_id", speakerID, "error", err)
			return
		}
		m.decoders[speakerID] = dec
		m.queues[speakerID] = &frameQueue{}
	}
	pcm := make([]int16, samplesPerFrame)
	n, err := dec.Decode(opusData, pcm)
	if err != nil {
		slog.Debug("dropping undecodable opus packet", "speaker_id", speakerID, "error", err)
		return
	}
	if n > 0 {
		total := min(n*opusChannels, samplesPerFrame)
		frame := make([]int16, total)
		copy(frame, pcm[:total])
		m.queues[speakerID].push(frame)
	}
}

func (m *OpusMixer) MixFrame() ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !hasQueuedFrames(m.queues) {
		return nil, false
	}
	mixed := make([]int16, samplesPerFrame)
	m.mixQueuedFrames(mixed)
	return audio.Int16ToMono(mixed, opusChannels), true
}

func hasQueuedFrames(queues map[string]*frameQueue) bool {
	for _, q := range queues {
		if q.hasFrame() {
			return true
		}
	}
	return false
}

func (m *OpusMixer) mixQueuedFrames(mixed []int16) {
	for _, q := range m.queues {
		frame, ok := q.pop()
		if !ok {
			continue
		}
		for i := 0; i < len(frame) && i < samplesPerFrame; i++ {
			mixed[i] = clampPCM(int32(mixed[i]) + int32(frame[i]))
		}
	}
}

func clampPCM(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func (m *OpusMixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.decoders = nil
	m.queues = nil
}

var errOpusUnavailable = errors.New("opus support not compiled in, rebuild with -tags opus")
