package translator

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LinguaDetector guesses the source language locally when SOURCE_LANGUAGE
// is unset. Only the languages live captions commonly see are loaded to keep
// memory bounded.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

func NewLinguaDetector() *LinguaDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Italian,
			lingua.Portuguese,
			lingua.Chinese,
			lingua.Japanese,
			lingua.Korean,
			lingua.Russian,
			lingua.Arabic,
			lingua.Hindi,
		).
		Build()
	return &LinguaDetector{detector: detector}
}

func (d *LinguaDetector) Detect(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
