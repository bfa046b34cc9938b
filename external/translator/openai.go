package translator

import (
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const translateSystemPrompt = "You are a professional live caption translator. Translate the user's text into the target language directly. Output only the translated text."

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OpenAITranslator struct {
	client oai.Client
	model  string
}

func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai translator: api key must not be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai translator: model must not be empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAITranslator{client: oai.NewClient(opts...), model: cfg.Model}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	resp, err := t.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(t.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(translateSystemPrompt),
			oai.UserMessage(buildTranslatePrompt(text, targetLang, sourceLang)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai translate: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildTranslatePrompt(text, targetLang, sourceLang string) string {
	if sourceLang == "" {
		return fmt.Sprintf("please translate the following text to %s:\n\n%s", targetLang, text)
	}
	return fmt.Sprintf("please translate the following text from %s to %s:\n\n%s", sourceLang, targetLang, text)
}
