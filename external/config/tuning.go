package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	internalconfig "github.com/foxseedlab/livecaption/internal/config"
	"gopkg.in/yaml.v3"
)

// tuningFile mirrors the knobs that are awkward to keep in env vars. Absent
// keys leave the env value in place.
type tuningFile struct {
	Segmenter struct {
		BlockDuration       *time.Duration `yaml:"block_duration"`
		SegmentDuration     *time.Duration `yaml:"segment_duration"`
		Overlap             *time.Duration `yaml:"overlap"`
		SilenceThreshold    *float64       `yaml:"silence_threshold"`
		ForcedFlushInterval *time.Duration `yaml:"forced_flush_interval"`
		WatchdogInterval    *time.Duration `yaml:"watchdog_interval"`
		ProcessorWait       *time.Duration `yaml:"processor_wait"`
		HistoryCap          *int           `yaml:"history_cap"`
		RetainedTailBlocks  *int           `yaml:"retained_tail_blocks"`
	} `yaml:"segmenter"`
	Stitcher struct {
		TrimThreshold      *int `yaml:"trim_threshold"`
		TrimKeep           *int `yaml:"trim_keep"`
		OverlapMinWords    *int `yaml:"overlap_min_words"`
		OverlapMaxWords    *int `yaml:"overlap_max_words"`
		ShortFragmentWords *int `yaml:"short_fragment_words"`
	} `yaml:"stitcher"`
	Emitter struct {
		MaxInFlight         *int           `yaml:"max_inflight"`
		CollaboratorTimeout *time.Duration `yaml:"collaborator_timeout"`
	} `yaml:"emitter"`
}

func ApplyTuningFile(cfg *internalconfig.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open tuning file %q: %w", path, err)
	}
	defer f.Close()
	if err := ApplyTuning(cfg, f); err != nil {
		return fmt.Errorf("tuning file %q: %w", path, err)
	}
	return nil
}

func ApplyTuning(cfg *internalconfig.Config, r io.Reader) error {
	var tf tuningFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode: %w", err)
	}

	seg := tf.Segmenter
	setIf(&cfg.BlockDuration, seg.BlockDuration)
	setIf(&cfg.SegmentDuration, seg.SegmentDuration)
	setIf(&cfg.SegmentOverlap, seg.Overlap)
	setIf(&cfg.SilenceThreshold, seg.SilenceThreshold)
	setIf(&cfg.ForcedFlushInterval, seg.ForcedFlushInterval)
	setIf(&cfg.WatchdogInterval, seg.WatchdogInterval)
	setIf(&cfg.ProcessorWait, seg.ProcessorWait)
	setIf(&cfg.HistoryCap, seg.HistoryCap)
	setIf(&cfg.RetainedTailBlocks, seg.RetainedTailBlocks)

	st := tf.Stitcher
	setIf(&cfg.TrimThreshold, st.TrimThreshold)
	setIf(&cfg.TrimKeep, st.TrimKeep)
	setIf(&cfg.OverlapMinWords, st.OverlapMinWords)
	setIf(&cfg.OverlapMaxWords, st.OverlapMaxWords)
	setIf(&cfg.ShortFragmentWords, st.ShortFragmentWords)

	setIf(&cfg.MaxInFlight, tf.Emitter.MaxInFlight)
	setIf(&cfg.CollaboratorTimeout, tf.Emitter.CollaboratorTimeout)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
