package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/foxseedlab/livecaption/internal/translator"
	"github.com/google/uuid"
)

const azureRequestTimeout = 15 * time.Second

type AzureConfig struct {
	Key      string
	Region   string
	Endpoint string
}

// AzureTranslator calls the Translator Text REST API v3.0.
type AzureTranslator struct {
	key      string
	region   string
	endpoint string
	client   *http.Client
}

func NewAzureTranslator(cfg AzureConfig) *AzureTranslator {
	return &AzureTranslator{
		key:      cfg.Key,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   &http.Client{Timeout: azureRequestTimeout},
	}
}

type azureTextItem struct {
	Text string `json:"Text"`
}

type azureResponseItem struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

func (t *AzureTranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	if t.key == "" {
		return "", translator.ErrNotConfigured
	}

	q := url.Values{}
	q.Set("api-version", "3.0")
	q.Set("to", targetLang)
	if sourceLang != "" {
		q.Set("from", sourceLang)
	}
	body, err := json.Marshal([]azureTextItem{{Text: text}})
	if err != nil {
		return "", fmt.Errorf("marshal azure request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/translate?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create azure request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	if t.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", t.region)
	}
	req.Header.Set("X-ClientTraceId", uuid.New().String())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send azure request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("azure translator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var items []azureResponseItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return "", fmt.Errorf("decode azure response: %w", err)
	}
	if len(items) == 0 || len(items[0].Translations) == 0 {
		return "", fmt.Errorf("azure translator returned no translations")
	}
	return items[0].Translations[0].Text, nil
}
