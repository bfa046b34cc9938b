package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/livecaption/internal/stitcher"
	"github.com/foxseedlab/livecaption/internal/webhook"
)

type transcriptMeta struct {
	sessionID      string
	frameSource    string
	sourceLanguage string
	targetLanguage string
	stopReason     string
}

// buildTranscriptText renders one "HH:MM:SS text" line per recognized
// fragment, timed from the session start.
func buildTranscriptText(startedAt time.Time, fragments []loggedFragment, pick func(loggedFragment) string) string {
	lines := make([]string, 0, len(fragments))
	for _, f := range fragments {
		text := strings.TrimSpace(pick(f))
		if text == "" {
			continue
		}
		elapsed := f.recognizedAt.Sub(startedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		lines = append(lines, fmt.Sprintf("%s %s", formatElapsedHMS(elapsed), text))
	}
	return strings.Join(lines, "\n")
}

func buildTranscriptWebhookPayload(meta transcriptMeta, startedAt, endedAt time.Time, stats webhook.TranscriptWebhookStats, fragments []loggedFragment, live stitcher.State) webhook.TranscriptWebhookPayload {
	durationSeconds := int64(endedAt.Sub(startedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	out := make([]webhook.TranscriptWebhookFragment, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, webhook.TranscriptWebhookFragment{
			Seq:          f.seq,
			RecognizedAt: f.recognizedAt.UTC().Format(time.RFC3339),
			Transcript:   f.text,
			Translation:  f.translation,
		})
	}

	return webhook.TranscriptWebhookPayload{
		SchemaVersion:    webhook.TranscriptWebhookSchemaVersion,
		SessionID:        meta.sessionID,
		FrameSource:      meta.frameSource,
		SourceLanguage:   meta.sourceLanguage,
		TargetLanguage:   meta.targetLanguage,
		StartAt:          startedAt.UTC().Format(time.RFC3339),
		EndAt:            endedAt.UTC().Format(time.RFC3339),
		DurationSeconds:  durationSeconds,
		StopReason:       meta.stopReason,
		StopReasonDetail: stopReasonDetail(meta.stopReason),
		Stats:            stats,
		Fragments:        out,
		Transcript:       buildTranscriptText(startedAt, fragments, func(f loggedFragment) string { return f.text }),
		Translation:      buildTranscriptText(startedAt, fragments, func(f loggedFragment) string { return f.translation }),
		LiveTranscript:   live.Transcription,
		LiveTranslation:  live.Translation,
	}
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
