package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
	"github.com/foxseedlab/livecaption/internal/caption"
	"github.com/foxseedlab/livecaption/internal/config"
	"github.com/foxseedlab/livecaption/internal/emitter"
	"github.com/foxseedlab/livecaption/internal/observe"
	"github.com/foxseedlab/livecaption/internal/segmenter"
	"github.com/foxseedlab/livecaption/internal/stitcher"
	"github.com/foxseedlab/livecaption/internal/transcriber"
	"github.com/foxseedlab/livecaption/internal/translator"
	"github.com/foxseedlab/livecaption/internal/webhook"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	statsInterval   = 5 * time.Second
	finalizeTimeout = 30 * time.Second
)

var (
	ErrAlreadyRunning = errors.New("session already running")
	ErrNotRunning     = errors.New("no session running")

	errFrameSource = errors.New("frame source")
)

type Manager struct {
	cfg      *config.Config
	source   audio.FrameSource
	stt      transcriber.Transcriber
	tr       translator.Translator
	detector translator.LanguageDetector
	sink     caption.Sink
	webhook  webhook.Sender
	metrics  *observe.Metrics

	statsInterval time.Duration
	now           func() time.Time

	running atomic.Bool
}

func NewManager(cfg *config.Config, source audio.FrameSource, stt transcriber.Transcriber, tr translator.Translator, detector translator.LanguageDetector, sink caption.Sink, wh webhook.Sender, metrics *observe.Metrics) *Manager {
	return &Manager{
		cfg:           cfg,
		source:        source,
		stt:           stt,
		tr:            tr,
		detector:      detector,
		sink:          sink,
		webhook:       wh,
		metrics:       metrics,
		statsInterval: statsInterval,
		now:           time.Now,
	}
}

// Ready reports whether a session is currently capturing.
func (m *Manager) Ready() error {
	if !m.running.Load() {
		return ErrNotRunning
	}
	return nil
}

func (m *Manager) Running() bool {
	return m.running.Load()
}

// Run captures and captions one session until ctx is cancelled or the frame
// source stops. The audio input ending is a normal stop; any other capture
// failure is returned after the session has been finalized.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)

	st := newSessionState(uuid.New().String(), m.now())
	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, 1)
		defer m.metrics.ActiveSessions.Add(context.Background(), -1)
	}

	slog.Info("session started",
		"session_id", st.id,
		"frame_source", m.cfg.FrameSource,
		"sample_rate", m.source.SampleRate(),
		"source_language", m.cfg.SourceLanguage,
		"target_language", m.cfg.TargetLanguage)

	live, runErr := m.runPipeline(ctx, st)
	reason := stopReasonFor(runErr)
	slog.Info("session stopped", "session_id", st.id, "reason", reason, "error", runErr)

	m.finalize(st, reason, live)

	if runErr == nil || errors.Is(runErr, audio.ErrSourceClosed) {
		return nil
	}
	return runErr
}

// runPipeline wires source, segmenter, emitter, stitcher and caption
// runners under one errgroup and returns the final stitched state.
func (m *Manager) runPipeline(ctx context.Context, st *sessionState) (stitcher.State, error) {
	obs := &pipelineObserver{state: st, metrics: m.metrics, now: m.now}

	seg := segmenter.New(m.segmenterConfig(), segmenter.WithObserver(obs))
	em := emitter.New(emitter.Config{
		SourceLanguage: m.cfg.SourceLanguage,
		TargetLanguage: m.cfg.TargetLanguage,
		MaxInFlight:    m.cfg.MaxInFlight,
		CallTimeout:    m.cfg.CollaboratorTimeout,
	}, m.stt, m.tr, m.detector, obs)
	stitch := stitcher.New(m.stitcherOptions(), m.sink, stitcher.WithObserver(obs))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := m.source.Start(gctx, func(f audio.Frame) {
			st.framesReceived.Add(1)
			seg.OnFrame(f)
		})
		if err != nil {
			return fmt.Errorf("%w: %w", errFrameSource, err)
		}
		return nil
	})
	g.Go(func() error {
		return seg.Run(gctx)
	})
	g.Go(func() error {
		return em.Run(gctx, seg.Segments())
	})
	g.Go(func() error {
		return stitch.Run(gctx, em.Fragments())
	})
	if multi, ok := m.sink.(caption.Multi); ok {
		for _, r := range multi.Runners() {
			g.Go(func() error {
				return r.Run(gctx)
			})
		}
	} else if r, ok := m.sink.(caption.Runner); ok {
		g.Go(func() error {
			return r.Run(gctx)
		})
	}
	g.Go(func() error {
		m.logStats(gctx, st, seg)
		return nil
	})
	err := g.Wait()
	return stitch.Snapshot(), err
}

func (m *Manager) logStats(ctx context.Context, st *sessionState, seg *segmenter.Segmenter) {
	ticker := time.NewTicker(m.statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := st.stats()
			slog.Info("audio pipeline stats",
				"session_id", st.id,
				"frames_received", stats.FramesReceived,
				"segments_emitted", stats.SegmentsEmitted,
				"segments_discarded", stats.SegmentsDiscarded,
				"forced_flushes", stats.ForcedFlushes,
				"fragments_merged", stats.FragmentsMerged,
				"empty_results", stats.EmptyResults,
				"empty_streak", st.emptyStreak.Load(),
				"segmenter_state", seg.State().String())
		}
	}
}

func (m *Manager) finalize(st *sessionState, reason string, live stitcher.State) {
	endedAt := m.now()

	stats := st.stats()
	slog.Info("session finalized",
		"session_id", st.id,
		"duration", endedAt.Sub(st.startedAt).Round(time.Second).String(),
		"segments_emitted", stats.SegmentsEmitted,
		"fragments_merged", stats.FragmentsMerged,
		"transcript_chars", len(live.Transcription))

	if m.webhook == nil || m.cfg.TranscriptWebhookURL == "" {
		return
	}
	payload := buildTranscriptWebhookPayload(transcriptMeta{
		sessionID:      st.id,
		frameSource:    m.cfg.FrameSource,
		sourceLanguage: m.cfg.SourceLanguage,
		targetLanguage: m.cfg.TargetLanguage,
		stopReason:     reason,
	}, st.startedAt, endedAt, stats, st.fragmentLog(), live)

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	if err := m.webhook.SendTranscript(ctx, payload); err != nil {
		slog.Error("failed to send webhook transcript", "error", err, "session_id", st.id)
		return
	}
	slog.Info("webhook transcript sent", "session_id", st.id, "fragments", len(payload.Fragments))
}

func (m *Manager) segmenterConfig() segmenter.Config {
	rate := m.source.SampleRate()
	blockSamples := audio.DurationSamples(m.cfg.BlockDuration, rate)
	if b, ok := m.source.(interface{ BlockSamples() int }); ok {
		blockSamples = b.BlockSamples()
	}
	return segmenter.Config{
		SampleRate:          rate,
		BlockSamples:        blockSamples,
		SegmentDuration:     m.cfg.SegmentDuration,
		Overlap:             m.cfg.SegmentOverlap,
		SilenceThreshold:    m.cfg.SilenceThreshold,
		ForcedFlushInterval: m.cfg.ForcedFlushInterval,
		WatchdogInterval:    m.cfg.WatchdogInterval,
		ProcessorWait:       m.cfg.ProcessorWait,
		HistoryCap:          m.cfg.HistoryCap,
		RetainedTail:        m.cfg.RetainedTailBlocks,
	}
}

func (m *Manager) stitcherOptions() stitcher.Options {
	return stitcher.Options{
		TrimThreshold:      m.cfg.TrimThreshold,
		TrimKeep:           m.cfg.TrimKeep,
		MinOverlapWords:    m.cfg.OverlapMinWords,
		MaxOverlapWords:    m.cfg.OverlapMaxWords,
		ShortFragmentWords: m.cfg.ShortFragmentWords,
	}
}

func stopReasonFor(err error) string {
	switch {
	case err == nil:
		return stopReasonSignal
	case errors.Is(err, audio.ErrSourceClosed):
		return stopReasonSourceClosed
	case errors.Is(err, errFrameSource):
		return stopReasonSourceFailed
	default:
		return stopReasonPipelineFailed
	}
}

func callReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, emitter.ErrEmptyResult):
		return "empty"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, translator.ErrNotConfigured):
		return "not_configured"
	default:
		return "error"
	}
}
