package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/foxseedlab/livecaption/internal/transcriber"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAITranscriber uploads each segment as a WAV file to the audio
// transcriptions endpoint.
type OpenAITranscriber struct {
	client oai.Client
	model  string
}

func NewOpenAITranscriber(cfg OpenAIConfig) (*OpenAITranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai transcriber: api key must not be empty")
	}
	model := cfg.Model
	if model == "" {
		model = string(oai.AudioModelWhisper1)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAITranscriber{client: oai.NewClient(opts...), model: model}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, req transcriber.Request) (string, error) {
	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(req.WAV), fmt.Sprintf("segment-%d.wav", req.Seq), "audio/wav"),
		Model: oai.AudioModel(t.model),
	}
	if req.Language != "" {
		params.Language = param.NewOpt(baseLanguage(req.Language))
	}
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// baseLanguage reduces a BCP 47 tag like "en-US" to the ISO 639-1 code the
// transcription endpoint accepts.
func baseLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}
