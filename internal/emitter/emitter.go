package emitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
	"github.com/foxseedlab/livecaption/internal/segmenter"
	"github.com/foxseedlab/livecaption/internal/stitcher"
	"github.com/foxseedlab/livecaption/internal/transcriber"
	"github.com/foxseedlab/livecaption/internal/translator"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyResult = errors.New("empty recognition result")

var regexTimestamp = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\.\d{3}\s-->\s\d{2}:\d{2}:\d{2}\.\d{3}\]`)

type Config struct {
	SourceLanguage string
	TargetLanguage string
	MaxInFlight    int
	CallTimeout    time.Duration
}

// Observer is told how each collaborator call went. err is nil on success.
type Observer interface {
	Transcribed(seq uint64, elapsed time.Duration, err error)
	Translated(seq uint64, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) Transcribed(uint64, time.Duration, error) {}
func (nopObserver) Translated(uint64, time.Duration, error)  {}

// Emitter sends segments to speech-to-text and translation and delivers
// exactly one Fragment per segment, so the stitcher never waits on a
// sequence number that will not arrive.
type Emitter struct {
	cfg      Config
	stt      transcriber.Transcriber
	tr       translator.Translator
	detector translator.LanguageDetector
	observer Observer
	out      chan stitcher.Fragment
}

func New(cfg Config, stt transcriber.Transcriber, tr translator.Translator, detector translator.LanguageDetector, observer Observer) *Emitter {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	if tr == nil {
		tr = translator.Passthrough{}
	}
	if detector == nil {
		detector = translator.NoDetector{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Emitter{
		cfg:      cfg,
		stt:      stt,
		tr:       tr,
		detector: detector,
		observer: observer,
		out:      make(chan stitcher.Fragment, cfg.MaxInFlight),
	}
}

// Fragments is closed when Run returns.
func (e *Emitter) Fragments() <-chan stitcher.Fragment {
	return e.out
}

func (e *Emitter) Run(ctx context.Context, in <-chan segmenter.Segment) error {
	defer close(e.out)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxInFlight)
	for seg := range in {
		g.Go(func() error {
			e.emit(gctx, seg)
			return nil
		})
	}
	return g.Wait()
}

func (e *Emitter) emit(ctx context.Context, seg segmenter.Segment) {
	frag := stitcher.Fragment{Seq: seg.Seq}

	text, err := e.transcribe(ctx, seg)
	switch {
	case errors.Is(err, ErrEmptyResult):
		slog.Debug("no speech recognized", "seq", seg.Seq, "forced", seg.Forced)
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		slog.Warn("transcription failed", "seq", seg.Seq, "error", err)
	default:
		frag.Text = text
		frag.Translation = e.translate(ctx, seg.Seq, text)
	}

	select {
	case e.out <- frag:
	case <-ctx.Done():
	}
}

func (e *Emitter) transcribe(ctx context.Context, seg segmenter.Segment) (string, error) {
	pcm := audio.PCM16(seg.Samples())
	req := transcriber.Request{
		Seq:        seg.Seq,
		PCM:        pcm,
		WAV:        audio.EncodeWAV(pcm, seg.SampleRate, 1),
		SampleRate: seg.SampleRate,
		Language:   e.cfg.SourceLanguage,
	}

	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()
	started := time.Now()
	text, err := e.stt.Transcribe(callCtx, req)
	if err == nil {
		text = CleanText(text)
		if text == "" {
			err = ErrEmptyResult
		}
	}
	e.observer.Transcribed(seg.Seq, time.Since(started), err)
	if err != nil {
		return "", fmt.Errorf("transcribe segment %d: %w", seg.Seq, err)
	}
	return text, nil
}

// translate fails open: any error yields the source text.
func (e *Emitter) translate(ctx context.Context, seq uint64, text string) string {
	target := e.cfg.TargetLanguage
	source := e.cfg.SourceLanguage
	if source == "" {
		if code, ok := e.detector.Detect(text); ok {
			source = code
		}
	}
	if target == "" || sameLanguage(source, target) {
		return text
	}

	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()
	started := time.Now()
	translated, err := e.tr.Translate(callCtx, text, target, source)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = ErrEmptyResult
	}
	e.observer.Translated(seq, time.Since(started), err)
	if err != nil {
		slog.Warn("translation failed, showing source text", "seq", seq, "target_language", target, "error", err)
		return text
	}
	return strings.TrimSpace(translated)
}

func (e *Emitter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.CallTimeout)
}

// CleanText strips subtitle timestamps some recognizers leave in their
// output and trims surrounding whitespace.
func CleanText(text string) string {
	text = regexTimestamp.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func sameLanguage(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(baseLanguage(a), baseLanguage(b))
}

func baseLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return tag[:i]
	}
	return tag
}
