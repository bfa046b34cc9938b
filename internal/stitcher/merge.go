package stitcher

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foxseedlab/livecaption/internal/caption"
)

const sentenceEnders = ".!?"

type Options struct {
	TrimThreshold      int
	TrimKeep           int
	MinOverlapWords    int
	MaxOverlapWords    int
	ShortFragmentWords int
}

func DefaultOptions() Options {
	return Options{
		TrimThreshold:      1000,
		TrimKeep:           500,
		MinOverlapWords:    3,
		MaxOverlapWords:    10,
		ShortFragmentWords: 3,
	}
}

// State is the accumulated transcript and translation of one session.
type State struct {
	Transcription string
	Translation   string
	LastFragment  string
}

// Trim bounds both channels. When the transcription exceeds the threshold
// both keep their last TrimKeep characters; a translation that alone
// exceeds it is trimmed on its own.
func Trim(st State, opts Options) State {
	switch {
	case utf8.RuneCountInString(st.Transcription) > opts.TrimThreshold:
		st.Transcription = caption.TailRunes(st.Transcription, opts.TrimKeep)
		st.Translation = caption.TailRunes(st.Translation, opts.TrimKeep)
	case utf8.RuneCountInString(st.Translation) > opts.TrimThreshold:
		st.Translation = caption.TailRunes(st.Translation, opts.TrimKeep)
	}
	return st
}

// Merge folds one recognized fragment and its translation into st. The
// returned bool reports whether either channel changed. Merge is pure: the
// same inputs always yield the same state.
func Merge(st State, fragment, translated string, opts Options) (State, bool) {
	words := strings.Fields(fragment)
	if len(words) == 0 {
		return st, false
	}
	text := strings.Join(words, " ")
	translated = strings.TrimSpace(translated)

	st = Trim(st, opts)

	if strings.TrimSpace(st.Transcription) == "" {
		st.Transcription = text
		st.Translation = translated
		st.LastFragment = text
		return st, true
	}

	if len(words) <= opts.ShortFragmentWords {
		st.Transcription = join(st.Transcription, " ", text)
		st.Translation = join(st.Translation, " ", translated)
		st.LastFragment = text
		return st, true
	}

	if k := overlapWords(st.Transcription, words, opts); k > 0 {
		st.LastFragment = text
		if k == len(words) {
			return st, false
		}
		st.Transcription = join(st.Transcription, " ", strings.Join(words[k:], " "))
		st.Translation = join(st.Translation, " ", translated)
		return st, true
	}

	sep := " "
	if startsUpper(text) && endsSentence(st.Transcription) {
		sep = "\n"
	}
	st.Transcription = join(st.Transcription, sep, text)
	st.Translation = join(st.Translation, sep, translated)
	st.LastFragment = text
	return st, true
}

// overlapWords returns the largest k in [MinOverlapWords, MaxOverlapWords]
// such that the first k words of the fragment equal the last k words of the
// transcription, or 0.
func overlapWords(transcription string, words []string, opts Options) int {
	tail := strings.Fields(transcription)
	maxK := min(opts.MaxOverlapWords, len(words), len(tail))
	for k := maxK; k >= opts.MinOverlapWords && k > 0; k-- {
		if slices.Equal(tail[len(tail)-k:], words[:k]) {
			return k
		}
	}
	return 0
}

func join(a, sep, b string) string {
	switch {
	case b == "":
		return a
	case a == "":
		return b
	default:
		return a + sep + b
	}
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func endsSentence(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimRight(s, " \t\r\n"))
	return strings.ContainsRune(sentenceEnders, r)
}
