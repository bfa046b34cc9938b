package emitter

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
	"github.com/foxseedlab/livecaption/internal/segmenter"
	"github.com/foxseedlab/livecaption/internal/stitcher"
	"github.com/foxseedlab/livecaption/internal/transcriber"
)

type mockTranscriber struct {
	mu       sync.Mutex
	results  map[uint64]string
	errs     map[uint64]error
	delays   map[uint64]time.Duration
	requests []transcriber.Request
}

func (m *mockTranscriber) Transcribe(ctx context.Context, req transcriber.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	delay := m.delays[req.Seq]
	text, err := m.results[req.Seq], m.errs[req.Seq]
	m.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, err
}

type mockTranslator struct {
	mu      sync.Mutex
	err     error
	sources []string
}

func (m *mockTranslator) Translate(_ context.Context, text, target, source string) (string, error) {
	m.mu.Lock()
	m.sources = append(m.sources, source)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return "[" + target + "] " + text, nil
}

type fixedDetector string

func (d fixedDetector) Detect(string) (string, bool) {
	return string(d), d != ""
}

type countingObserver struct {
	mu           sync.Mutex
	transcribed  int
	sttErrors    int
	translated   int
	translateErr int
}

func (o *countingObserver) Transcribed(_ uint64, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transcribed++
	if err != nil {
		o.sttErrors++
	}
}

func (o *countingObserver) Translated(_ uint64, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.translated++
	if err != nil {
		o.translateErr++
	}
}

func segment(seq uint64) segmenter.Segment {
	return segmenter.Segment{
		Seq:        seq,
		Frames:     []audio.Frame{{Seq: seq, Samples: []float32{0.1, -0.1, 0.2, -0.2}}},
		SampleRate: 16000,
	}
}

func runEmitter(t *testing.T, e *Emitter, segs ...segmenter.Segment) []stitcher.Fragment {
	t.Helper()
	in := make(chan segmenter.Segment, len(segs))
	for _, s := range segs {
		in <- s
	}
	close(in)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background(), in) }()

	var out []stitcher.Fragment
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-e.Fragments():
			if !ok {
				if err := <-done; err != nil {
					t.Fatalf("Run returned %v", err)
				}
				sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
				return out
			}
			out = append(out, f)
		case <-timeout:
			t.Fatal("timed out waiting for fragments")
		}
	}
}

func TestEmitter_OneFragmentPerSegment(t *testing.T) {
	stt := &mockTranscriber{
		results: map[uint64]string{1: "hello there", 3: "  general kenobi  "},
		errs:    map[uint64]error{2: errors.New("backend unavailable")},
		delays:  map[uint64]time.Duration{1: 50 * time.Millisecond},
	}
	tr := &mockTranslator{}
	obs := &countingObserver{}
	e := New(Config{SourceLanguage: "en", TargetLanguage: "es", MaxInFlight: 3}, stt, tr, nil, obs)

	frags := runEmitter(t, e, segment(1), segment(2), segment(3), segment(4))

	if len(frags) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(frags))
	}
	want := []stitcher.Fragment{
		{Seq: 1, Text: "hello there", Translation: "[es] hello there"},
		{Seq: 2},
		{Seq: 3, Text: "general kenobi", Translation: "[es] general kenobi"},
		{Seq: 4},
	}
	for i, w := range want {
		if frags[i] != w {
			t.Fatalf("fragment %d = %+v, want %+v", i, frags[i], w)
		}
	}
	if obs.transcribed != 4 || obs.sttErrors != 2 {
		t.Fatalf("expected 4 transcriptions with 2 failures, got %d/%d", obs.transcribed, obs.sttErrors)
	}
	if obs.translated != 2 {
		t.Fatalf("expected translation only for non-empty text, got %d", obs.translated)
	}
}

func TestEmitter_RequestEncoding(t *testing.T) {
	stt := &mockTranscriber{results: map[uint64]string{1: "ok"}}
	e := New(Config{SourceLanguage: "en-US", TargetLanguage: "en", MaxInFlight: 1}, stt, &mockTranslator{}, nil, nil)
	runEmitter(t, e, segment(1))

	if len(stt.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(stt.requests))
	}
	req := stt.requests[0]
	if len(req.PCM) != 8 {
		t.Fatalf("expected 4 samples of 16-bit PCM, got %d bytes", len(req.PCM))
	}
	if len(req.WAV) != 44+8 || string(req.WAV[:4]) != "RIFF" {
		t.Fatal("expected a WAV container around the PCM")
	}
	if req.Language != "en-US" || req.SampleRate != 16000 {
		t.Fatalf("unexpected request metadata: %+v", req)
	}
}

func TestEmitter_TranslationFailsOpen(t *testing.T) {
	stt := &mockTranscriber{results: map[uint64]string{1: "keep this text"}}
	tr := &mockTranslator{err: errors.New("quota exceeded")}
	obs := &countingObserver{}
	e := New(Config{SourceLanguage: "en", TargetLanguage: "fr", MaxInFlight: 1}, stt, tr, nil, obs)

	frags := runEmitter(t, e, segment(1))
	if frags[0].Translation != "keep this text" {
		t.Fatalf("expected source text in translation channel, got %q", frags[0].Translation)
	}
	if obs.translateErr != 1 {
		t.Fatalf("expected translation error to be observed, got %d", obs.translateErr)
	}
}

func TestEmitter_SameLanguageSkipsTranslation(t *testing.T) {
	stt := &mockTranscriber{results: map[uint64]string{1: "already english"}}
	tr := &mockTranslator{}
	e := New(Config{SourceLanguage: "en-GB", TargetLanguage: "en", MaxInFlight: 1}, stt, tr, nil, nil)

	frags := runEmitter(t, e, segment(1))
	if frags[0].Translation != "already english" {
		t.Fatalf("unexpected translation %q", frags[0].Translation)
	}
	if len(tr.sources) != 0 {
		t.Fatal("translator must not be called for matching languages")
	}
}

func TestEmitter_DetectorSuppliesSourceHint(t *testing.T) {
	stt := &mockTranscriber{results: map[uint64]string{1: "bonjour tout le monde"}}
	tr := &mockTranslator{}
	e := New(Config{TargetLanguage: "es", MaxInFlight: 1}, stt, tr, fixedDetector("fr"), nil)

	runEmitter(t, e, segment(1))
	if len(tr.sources) != 1 || tr.sources[0] != "fr" {
		t.Fatalf("expected detected source hint fr, got %v", tr.sources)
	}
}

func TestEmitter_CallTimeout(t *testing.T) {
	stt := &mockTranscriber{
		results: map[uint64]string{1: "too late"},
		delays:  map[uint64]time.Duration{1: time.Second},
	}
	e := New(Config{TargetLanguage: "es", MaxInFlight: 1, CallTimeout: 20 * time.Millisecond}, stt, nil, nil, nil)

	frags := runEmitter(t, e, segment(1))
	if len(frags) != 1 || frags[0].Text != "" {
		t.Fatalf("expected an empty fragment after timeout, got %+v", frags)
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("[00:00:00.000 --> 00:00:01.500]  hello world ")
	if got != "hello world" {
		t.Fatalf("CleanText = %q", got)
	}
}
