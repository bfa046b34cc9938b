package session

import (
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/livecaption/internal/stitcher"
	"github.com/foxseedlab/livecaption/internal/webhook"
)

func TestBuildTranscriptText(t *testing.T) {
	startedAt := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	fragments := []loggedFragment{
		{seq: 1, recognizedAt: startedAt.Add(15 * time.Second), text: "hello there", translation: "hola"},
		{seq: 2, recognizedAt: startedAt.Add(75 * time.Second), text: "  ", translation: ""},
		{seq: 3, recognizedAt: startedAt.Add(3725 * time.Second), text: "see you", translation: "hasta luego"},
	}

	body := buildTranscriptText(startedAt, fragments, func(f loggedFragment) string { return f.text })
	lines := strings.Split(body, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected blank fragments to be skipped, got %q", body)
	}
	if lines[0] != "00:00:15 hello there" || lines[1] != "01:02:05 see you" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestBuildTranscriptWebhookPayload(t *testing.T) {
	startedAt := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(2 * time.Minute)
	fragments := []loggedFragment{
		{seq: 1, recognizedAt: startedAt.Add(10 * time.Second), text: "hello world", translation: "hola mundo"},
	}
	payload := buildTranscriptWebhookPayload(transcriptMeta{
		sessionID:      "session-1",
		frameSource:    "pcm",
		targetLanguage: "es",
		stopReason:     stopReasonSourceClosed,
	}, startedAt, endedAt, webhook.TranscriptWebhookStats{SegmentsEmitted: 3}, fragments, stitcher.State{
		Transcription: "hello world",
		Translation:   "hola mundo",
	})

	if payload.SchemaVersion != webhook.TranscriptWebhookSchemaVersion || payload.SessionID != "session-1" {
		t.Fatalf("unexpected header fields %+v", payload)
	}
	if payload.DurationSeconds != 120 {
		t.Fatalf("expected 120 seconds, got %d", payload.DurationSeconds)
	}
	if payload.StartAt != "2026-02-28T12:00:00Z" || payload.EndAt != "2026-02-28T12:02:00Z" {
		t.Fatalf("unexpected timestamps %s / %s", payload.StartAt, payload.EndAt)
	}
	if payload.StopReasonDetail != stopReasonDetail(stopReasonSourceClosed) {
		t.Fatalf("unexpected stop detail %q", payload.StopReasonDetail)
	}
	if len(payload.Fragments) != 1 || payload.Fragments[0].RecognizedAt != "2026-02-28T12:00:10Z" {
		t.Fatalf("unexpected fragments %+v", payload.Fragments)
	}
	if payload.Transcript != "00:00:10 hello world" || payload.Translation != "00:00:10 hola mundo" {
		t.Fatalf("unexpected transcript %q / %q", payload.Transcript, payload.Translation)
	}
	if payload.LiveTranscript != "hello world" || payload.Stats.SegmentsEmitted != 3 {
		t.Fatalf("unexpected live fields %+v", payload)
	}
}

func TestBuildTranscriptWebhookPayload_NegativeDuration(t *testing.T) {
	startedAt := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	payload := buildTranscriptWebhookPayload(transcriptMeta{}, startedAt, startedAt.Add(-time.Second), webhook.TranscriptWebhookStats{}, nil, stitcher.State{})
	if payload.DurationSeconds != 0 {
		t.Fatalf("expected clamped duration, got %d", payload.DurationSeconds)
	}
	if payload.Fragments == nil || len(payload.Fragments) != 0 {
		t.Fatalf("expected empty fragment list, got %+v", payload.Fragments)
	}
}

func TestFormatElapsedHMS(t *testing.T) {
	if got := formatElapsedHMS(3723 * time.Second); got != "01:02:03" {
		t.Fatalf("expected 01:02:03, got %s", got)
	}
}

func TestStopReasonDetail(t *testing.T) {
	for _, reason := range []string{stopReasonSignal, stopReasonSourceClosed, stopReasonSourceFailed, stopReasonPipelineFailed} {
		if stopReasonDetail(reason) == stopReasonDetail("unknown") {
			t.Fatalf("reason %q should have a specific detail", reason)
		}
	}
}
