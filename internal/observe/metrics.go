// Package observe holds the OpenTelemetry instruments for the caption
// pipeline and the provider bootstrap that exposes them to Prometheus.
package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/foxseedlab/livecaption"

const (
	KindSTT       = "stt"
	KindTranslate = "translate"
)

// Metrics is safe for concurrent use; the OTel instruments synchronise
// themselves.
type Metrics struct {
	SegmentsEmitted     metric.Int64Counter
	SegmentsDiscarded   metric.Int64Counter
	ForcedFlushes       metric.Int64Counter
	FragmentsMerged     metric.Int64Counter
	CollaboratorErrors  metric.Int64Counter
	STTDuration         metric.Float64Histogram
	TranslateDuration   metric.Float64Histogram
	ActiveSessions      metric.Int64UpDownCounter
	CaptionSubscribers  metric.Int64UpDownCounter
	SegmentAudioSeconds metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30,
}

var segmentBuckets = []float64{
	0.25, 0.5, 1, 1.5, 2, 3, 5, 8,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SegmentsEmitted, err = m.Int64Counter("livecaption.segments.emitted",
		metric.WithDescription("Segments handed to speech-to-text, by forced flag."),
	); err != nil {
		return nil, err
	}
	if met.SegmentsDiscarded, err = m.Int64Counter("livecaption.segments.discarded",
		metric.WithDescription("Segments dropped as silence."),
	); err != nil {
		return nil, err
	}
	if met.ForcedFlushes, err = m.Int64Counter("livecaption.forced_flushes",
		metric.WithDescription("Forced flushes raised by the watchdog."),
	); err != nil {
		return nil, err
	}
	if met.FragmentsMerged, err = m.Int64Counter("livecaption.fragments.merged",
		metric.WithDescription("Fragments that changed the live transcript."),
	); err != nil {
		return nil, err
	}
	if met.CollaboratorErrors, err = m.Int64Counter("livecaption.collaborator.errors",
		metric.WithDescription("Failed or empty collaborator calls by kind and reason."),
	); err != nil {
		return nil, err
	}
	if met.STTDuration, err = m.Float64Histogram("livecaption.stt.duration",
		metric.WithDescription("Latency of speech-to-text calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslateDuration, err = m.Float64Histogram("livecaption.translate.duration",
		metric.WithDescription("Latency of translation calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SegmentAudioSeconds, err = m.Float64Histogram("livecaption.segment.audio",
		metric.WithDescription("Audio length of emitted segments including overlap."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(segmentBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("livecaption.active_sessions",
		metric.WithDescription("Number of running caption sessions."),
	); err != nil {
		return nil, err
	}
	if met.CaptionSubscribers, err = m.Int64UpDownCounter("livecaption.caption_subscribers",
		metric.WithDescription("Connected WebSocket caption clients."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

func (m *Metrics) RecordSegmentEmitted(ctx context.Context, forced bool, audio time.Duration) {
	m.SegmentsEmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("forced", strconv.FormatBool(forced))))
	m.SegmentAudioSeconds.Record(ctx, audio.Seconds())
}

func (m *Metrics) RecordSegmentDiscarded(ctx context.Context) {
	m.SegmentsDiscarded.Add(ctx, 1)
}

func (m *Metrics) RecordForcedFlush(ctx context.Context) {
	m.ForcedFlushes.Add(ctx, 1)
}

func (m *Metrics) RecordFragmentMerged(ctx context.Context) {
	m.FragmentsMerged.Add(ctx, 1)
}

// RecordCall records latency for kind (KindSTT or KindTranslate) and counts
// an error when reason is non-empty.
func (m *Metrics) RecordCall(ctx context.Context, kind string, elapsed time.Duration, reason string) {
	h := m.STTDuration
	if kind == KindTranslate {
		h = m.TranslateDuration
	}
	h.Record(ctx, elapsed.Seconds())
	if reason != "" {
		m.CollaboratorErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("reason", reason),
		))
	}
}
