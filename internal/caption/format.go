package caption

import (
	"strings"
	"unicode/utf8"
)

const (
	lineBreakMinWords = 12
	lineBreakPunct    = ".!?,:;"
)

// Format reflows transcript text for display. Whitespace is collapsed and a
// line is broken after a word ending in punctuation once it holds more than
// lineBreakMinWords words. Existing line breaks are kept.
func Format(text string) string {
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if f := formatParagraph(p); f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, "\n")
}

func formatParagraph(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	var line []string
	for _, w := range words {
		line = append(line, w)
		if len(line) > lineBreakMinWords && endsWithAny(w, lineBreakPunct) {
			lines = append(lines, strings.Join(line, " "))
			line = nil
		}
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return strings.Join(lines, "\n")
}

func endsWithAny(word, chars string) bool {
	r, _ := utf8.DecodeLastRuneInString(word)
	return r != utf8.RuneError && strings.ContainsRune(chars, r)
}

// TailRunes keeps at most n trailing runes of s.
func TailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-n:])
}
