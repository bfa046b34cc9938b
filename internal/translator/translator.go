package translator

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("translator not configured")

type Translator interface {
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// LanguageDetector guesses the ISO 639-1 code of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// Passthrough returns its input untranslated. It backs TRANSLATOR_PROVIDER=none.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

type NoDetector struct{}

func (NoDetector) Detect(string) (string, bool) {
	return "", false
}
