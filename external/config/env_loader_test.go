package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	internalconfig "github.com/foxseedlab/livecaption/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FrameSource != internalconfig.FrameSourcePCM {
		t.Fatalf("expected pcm frame source, got %q", cfg.FrameSource)
	}
	if cfg.SampleRate != 44100 || cfg.Channels != 1 {
		t.Fatalf("unexpected audio defaults: rate=%d channels=%d", cfg.SampleRate, cfg.Channels)
	}
	if cfg.SegmentDuration != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s segments, got %s", cfg.SegmentDuration)
	}
	if cfg.SilenceThreshold != 0.005 {
		t.Fatalf("expected silence threshold 0.005, got %v", cfg.SilenceThreshold)
	}
	if cfg.TrimThreshold != 1000 || cfg.TrimKeep != 500 {
		t.Fatalf("unexpected trim defaults: %d/%d", cfg.TrimThreshold, cfg.TrimKeep)
	}
	if cfg.TargetLanguage != "es" || cfg.SourceLanguage != "" {
		t.Fatalf("unexpected language defaults: source=%q target=%q", cfg.SourceLanguage, cfg.TargetLanguage)
	}
	if !cfg.CaptionTerminal {
		t.Fatal("terminal captions should be on by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEGMENT_DURATION", "3s")
	t.Setenv("SEGMENT_OVERLAP", "500ms")
	t.Setenv("SILENCE_THRESHOLD", "0.02")
	t.Setenv("SOURCE_LANGUAGE", "en")
	t.Setenv("TRANSLATOR_PROVIDER", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SegmentDuration != 3*time.Second || cfg.SegmentOverlap != 500*time.Millisecond {
		t.Fatalf("unexpected durations: %s / %s", cfg.SegmentDuration, cfg.SegmentOverlap)
	}
	if cfg.SilenceThreshold != 0.02 {
		t.Fatalf("expected 0.02, got %v", cfg.SilenceThreshold)
	}
	if cfg.TranslationEnabled() {
		t.Fatal("translation should be disabled")
	}
}

func TestLoad_ValidationError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without OPENAI_API_KEY")
	}
}

func TestLoad_TuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := `
segmenter:
  segment_duration: 2s
  overlap: 300ms
  history_cap: 40
stitcher:
  trim_threshold: 2000
  trim_keep: 800
emitter:
  max_inflight: 2
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TUNING_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SegmentDuration != 2*time.Second || cfg.SegmentOverlap != 300*time.Millisecond {
		t.Fatalf("tuning durations not applied: %s / %s", cfg.SegmentDuration, cfg.SegmentOverlap)
	}
	if cfg.HistoryCap != 40 || cfg.TrimThreshold != 2000 || cfg.TrimKeep != 800 || cfg.MaxInFlight != 2 {
		t.Fatalf("tuning ints not applied: %+v", cfg)
	}
	if cfg.SilenceThreshold != 0.005 {
		t.Fatalf("absent keys must keep env value, got %v", cfg.SilenceThreshold)
	}
}

func TestApplyTuning_UnknownField(t *testing.T) {
	cfg := &internalconfig.Config{}
	err := ApplyTuning(cfg, strings.NewReader("segmenter:\n  segment_length: 2s\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestApplyTuning_Empty(t *testing.T) {
	cfg := &internalconfig.Config{HistoryCap: 20}
	if err := ApplyTuning(cfg, strings.NewReader("")); err != nil {
		t.Fatalf("empty tuning should be accepted, got %v", err)
	}
	if cfg.HistoryCap != 20 {
		t.Fatalf("empty tuning changed config: %d", cfg.HistoryCap)
	}
}
