package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

const (
	FrameSourcePCM     = "pcm"
	FrameSourceDiscord = "discord"

	STTProviderOpenAI = "openai"
	STTProviderGoogle = "google"

	TranslatorProviderOpenAI = "openai"
	TranslatorProviderAzure  = "azure"
	TranslatorProviderNone   = "none"
)

type Config struct {
	Env         string
	FrameSource string
	SampleRate  int
	Channels    int

	BlockDuration       time.Duration
	SegmentDuration     time.Duration
	SegmentOverlap      time.Duration
	SilenceThreshold    float64
	ForcedFlushInterval time.Duration
	WatchdogInterval    time.Duration
	ProcessorWait       time.Duration
	HistoryCap          int
	RetainedTailBlocks  int

	TrimThreshold      int
	TrimKeep           int
	OverlapMinWords    int
	OverlapMaxWords    int
	ShortFragmentWords int

	MaxInFlight          int
	CollaboratorTimeout  time.Duration
	SourceLanguage       string
	TargetLanguage       string
	STTProvider          string
	TranslatorProvider   string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAISTTModel       string
	OpenAITranslateModel string

	AzureTranslatorKey      string
	AzureTranslatorRegion   string
	AzureTranslatorEndpoint string

	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string

	DiscordToken            string
	DiscordGuildID          string
	DiscordVCID             string
	DiscordCaptionChannelID string

	CaptionTerminal      bool
	HTTPAddr             string
	TranscriptWebhookURL string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.FrameSource {
	case FrameSourcePCM, FrameSourceDiscord:
	default:
		return fmt.Errorf("FRAME_SOURCE must be %q or %q, got %q", FrameSourcePCM, FrameSourceDiscord, c.FrameSource)
	}
	switch c.STTProvider {
	case STTProviderOpenAI, STTProviderGoogle:
	default:
		return fmt.Errorf("STT_PROVIDER must be %q or %q, got %q", STTProviderOpenAI, STTProviderGoogle, c.STTProvider)
	}
	switch c.TranslatorProvider {
	case TranslatorProviderOpenAI, TranslatorProviderAzure, TranslatorProviderNone:
	default:
		return fmt.Errorf("TRANSLATOR_PROVIDER must be one of openai, azure, none, got %q", c.TranslatorProvider)
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateStitching(); err != nil {
		return err
	}
	if c.MaxInFlight <= 0 {
		return fmt.Errorf("MAX_INFLIGHT must be positive, got %d", c.MaxInFlight)
	}
	if c.CollaboratorTimeout <= 0 {
		return fmt.Errorf("COLLABORATOR_TIMEOUT must be positive, got %s", c.CollaboratorTimeout)
	}
	if c.SourceLanguage != "" {
		if _, err := language.Parse(c.SourceLanguage); err != nil {
			return fmt.Errorf("SOURCE_LANGUAGE is invalid: %w", err)
		}
	}
	if _, err := language.Parse(c.TargetLanguage); err != nil {
		return fmt.Errorf("TARGET_LANGUAGE is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("CHANNELS must be positive, got %d", c.Channels)
	}
	if c.BlockDuration <= 0 {
		return fmt.Errorf("BLOCK_DURATION must be positive, got %s", c.BlockDuration)
	}
	if c.SegmentDuration <= 0 {
		return fmt.Errorf("SEGMENT_DURATION must be positive, got %s", c.SegmentDuration)
	}
	if c.SegmentOverlap < 0 {
		return fmt.Errorf("SEGMENT_OVERLAP must not be negative, got %s", c.SegmentOverlap)
	}
	if c.SilenceThreshold < 0 {
		return fmt.Errorf("SILENCE_THRESHOLD must not be negative, got %v", c.SilenceThreshold)
	}
	if c.ForcedFlushInterval <= 0 || c.WatchdogInterval <= 0 || c.ProcessorWait <= 0 {
		return fmt.Errorf("FORCED_FLUSH_INTERVAL, WATCHDOG_INTERVAL and PROCESSOR_WAIT must be positive")
	}
	if c.HistoryCap < 0 || c.RetainedTailBlocks < 0 {
		return fmt.Errorf("HISTORY_CAP and RETAINED_TAIL_BLOCKS must not be negative")
	}
	return nil
}

func (c *Config) validateStitching() error {
	if c.TrimKeep <= 0 || c.TrimThreshold < c.TrimKeep {
		return fmt.Errorf("TRIM_THRESHOLD (%d) must be at least TRIM_KEEP (%d) and TRIM_KEEP must be positive", c.TrimThreshold, c.TrimKeep)
	}
	if c.OverlapMinWords <= 0 || c.OverlapMaxWords < c.OverlapMinWords {
		return fmt.Errorf("OVERLAP_MIN_WORDS (%d) must be positive and not above OVERLAP_MAX_WORDS (%d)", c.OverlapMinWords, c.OverlapMaxWords)
	}
	if c.ShortFragmentWords < 0 {
		return fmt.Errorf("SHORT_FRAGMENT_WORDS must not be negative, got %d", c.ShortFragmentWords)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	checks := []requiredEnvField{
		{name: "TARGET_LANGUAGE", value: c.TargetLanguage},
	}
	if c.STTProvider == STTProviderOpenAI || c.TranslatorProvider == TranslatorProviderOpenAI {
		checks = append(checks, requiredEnvField{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey})
	}
	if c.STTProvider == STTProviderGoogle {
		checks = append(checks,
			requiredEnvField{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
			requiredEnvField{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
		)
	}
	if c.TranslatorProvider == TranslatorProviderAzure {
		checks = append(checks,
			requiredEnvField{name: "AZURE_TRANSLATOR_KEY", value: c.AzureTranslatorKey},
			requiredEnvField{name: "AZURE_TRANSLATOR_REGION", value: c.AzureTranslatorRegion},
		)
	}
	if c.DiscordEnabled() {
		checks = append(checks, requiredEnvField{name: "DISCORD_TOKEN", value: c.DiscordToken})
	}
	if c.FrameSource == FrameSourceDiscord {
		checks = append(checks,
			requiredEnvField{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
			requiredEnvField{name: "DISCORD_VC_ID", value: c.DiscordVCID},
		)
	}
	return checks
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DiscordEnabled reports whether a gateway connection is needed, either to
// capture voice or to post captions.
func (c *Config) DiscordEnabled() bool {
	return c.FrameSource == FrameSourceDiscord || c.DiscordCaptionChannelID != ""
}

func (c *Config) TranslationEnabled() bool {
	return c.TranslatorProvider != TranslatorProviderNone
}
