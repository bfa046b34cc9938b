package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/livecaption/internal/config"
)

type envConfig struct {
	Env         string `env:"ENV" envDefault:"production"`
	FrameSource string `env:"FRAME_SOURCE" envDefault:"pcm"`
	SampleRate  int    `env:"SAMPLE_RATE" envDefault:"44100"`
	Channels    int    `env:"CHANNELS" envDefault:"1"`

	BlockDuration       time.Duration `env:"BLOCK_DURATION" envDefault:"30ms"`
	SegmentDuration     time.Duration `env:"SEGMENT_DURATION" envDefault:"1.5s"`
	SegmentOverlap      time.Duration `env:"SEGMENT_OVERLAP" envDefault:"0s"`
	SilenceThreshold    float64       `env:"SILENCE_THRESHOLD" envDefault:"0.005"`
	ForcedFlushInterval time.Duration `env:"FORCED_FLUSH_INTERVAL" envDefault:"3s"`
	WatchdogInterval    time.Duration `env:"WATCHDOG_INTERVAL" envDefault:"2s"`
	ProcessorWait       time.Duration `env:"PROCESSOR_WAIT" envDefault:"500ms"`
	HistoryCap          int           `env:"HISTORY_CAP" envDefault:"20"`
	RetainedTailBlocks  int           `env:"RETAINED_TAIL_BLOCKS" envDefault:"2"`

	TrimThreshold      int `env:"TRIM_THRESHOLD" envDefault:"1000"`
	TrimKeep           int `env:"TRIM_KEEP" envDefault:"500"`
	OverlapMinWords    int `env:"OVERLAP_MIN_WORDS" envDefault:"3"`
	OverlapMaxWords    int `env:"OVERLAP_MAX_WORDS" envDefault:"10"`
	ShortFragmentWords int `env:"SHORT_FRAGMENT_WORDS" envDefault:"3"`

	MaxInFlight          int           `env:"MAX_INFLIGHT" envDefault:"4"`
	CollaboratorTimeout  time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"30s"`
	SourceLanguage       string        `env:"SOURCE_LANGUAGE"`
	TargetLanguage       string        `env:"TARGET_LANGUAGE" envDefault:"es"`
	STTProvider          string        `env:"STT_PROVIDER" envDefault:"openai"`
	TranslatorProvider   string        `env:"TRANSLATOR_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey         string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL        string        `env:"OPENAI_BASE_URL"`
	OpenAISTTModel       string        `env:"OPENAI_STT_MODEL" envDefault:"whisper-1"`
	OpenAITranslateModel string        `env:"OPENAI_TRANSLATE_MODEL" envDefault:"gpt-4o-mini"`

	AzureTranslatorKey      string `env:"AZURE_TRANSLATOR_KEY"`
	AzureTranslatorRegion   string `env:"AZURE_TRANSLATOR_REGION"`
	AzureTranslatorEndpoint string `env:"AZURE_TRANSLATOR_ENDPOINT" envDefault:"https://api.cognitive.microsofttranslator.com"`

	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"long"`

	DiscordToken            string `env:"DISCORD_TOKEN"`
	DiscordGuildID          string `env:"DISCORD_GUILD_ID"`
	DiscordVCID             string `env:"DISCORD_VC_ID"`
	DiscordCaptionChannelID string `env:"DISCORD_CAPTION_CHANNEL_ID"`

	CaptionTerminal      bool   `env:"CAPTION_TERMINAL" envDefault:"true"`
	HTTPAddr             string `env:"HTTP_ADDR"`
	TranscriptWebhookURL string `env:"TRANSCRIPT_WEBHOOK_URL"`
	TuningFile           string `env:"TUNING_FILE"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		FrameSource:                raw.FrameSource,
		SampleRate:                 raw.SampleRate,
		Channels:                   raw.Channels,
		BlockDuration:              raw.BlockDuration,
		SegmentDuration:            raw.SegmentDuration,
		SegmentOverlap:             raw.SegmentOverlap,
		SilenceThreshold:           raw.SilenceThreshold,
		ForcedFlushInterval:        raw.ForcedFlushInterval,
		WatchdogInterval:           raw.WatchdogInterval,
		ProcessorWait:              raw.ProcessorWait,
		HistoryCap:                 raw.HistoryCap,
		RetainedTailBlocks:         raw.RetainedTailBlocks,
		TrimThreshold:              raw.TrimThreshold,
		TrimKeep:                   raw.TrimKeep,
		OverlapMinWords:            raw.OverlapMinWords,
		OverlapMaxWords:            raw.OverlapMaxWords,
		ShortFragmentWords:         raw.ShortFragmentWords,
		MaxInFlight:                raw.MaxInFlight,
		CollaboratorTimeout:        raw.CollaboratorTimeout,
		SourceLanguage:             raw.SourceLanguage,
		TargetLanguage:             raw.TargetLanguage,
		STTProvider:                raw.STTProvider,
		TranslatorProvider:         raw.TranslatorProvider,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAIBaseURL:              raw.OpenAIBaseURL,
		OpenAISTTModel:             raw.OpenAISTTModel,
		OpenAITranslateModel:       raw.OpenAITranslateModel,
		AzureTranslatorKey:         raw.AzureTranslatorKey,
		AzureTranslatorRegion:      raw.AzureTranslatorRegion,
		AzureTranslatorEndpoint:    raw.AzureTranslatorEndpoint,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		DiscordToken:               raw.DiscordToken,
		DiscordGuildID:             raw.DiscordGuildID,
		DiscordVCID:                raw.DiscordVCID,
		DiscordCaptionChannelID:    raw.DiscordCaptionChannelID,
		CaptionTerminal:            raw.CaptionTerminal,
		HTTPAddr:                   raw.HTTPAddr,
		TranscriptWebhookURL:       raw.TranscriptWebhookURL,
	}
	if raw.TuningFile != "" {
		if err := ApplyTuningFile(cfg, raw.TuningFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
