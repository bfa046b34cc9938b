package webhook

import "context"

const TranscriptWebhookSchemaVersion = "2026-10-19"

type TranscriptWebhookFragment struct {
	Seq          uint64 `json:"seq"`
	RecognizedAt string `json:"recognized_at"`
	Transcript   string `json:"transcript"`
	Translation  string `json:"translation"`
}

type TranscriptWebhookStats struct {
	FramesReceived    int64 `json:"frames_received"`
	SegmentsEmitted   int64 `json:"segments_emitted"`
	SegmentsDiscarded int64 `json:"segments_discarded"`
	ForcedFlushes     int64 `json:"forced_flushes"`
	FragmentsMerged   int64 `json:"fragments_merged"`
	EmptyResults      int64 `json:"empty_results"`
}

type TranscriptWebhookPayload struct {
	SchemaVersion    string                      `json:"schema_version"`
	SessionID        string                      `json:"session_id"`
	FrameSource      string                      `json:"frame_source"`
	SourceLanguage   string                      `json:"source_language"`
	TargetLanguage   string                      `json:"target_language"`
	StartAt          string                      `json:"start_at"`
	EndAt            string                      `json:"end_at"`
	DurationSeconds  int64                       `json:"duration_seconds"`
	StopReason       string                      `json:"stop_reason"`
	StopReasonDetail string                      `json:"stop_reason_detail"`
	Stats            TranscriptWebhookStats      `json:"stats"`
	Fragments        []TranscriptWebhookFragment `json:"fragments"`
	Transcript       string                      `json:"transcript"`
	Translation      string                      `json:"translation"`
	LiveTranscript   string                      `json:"live_transcript"`
	LiveTranslation  string                      `json:"live_translation"`
}

type Sender interface {
	SendTranscript(ctx context.Context, payload TranscriptWebhookPayload) error
}
