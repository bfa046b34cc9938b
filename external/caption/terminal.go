package caption

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/foxseedlab/livecaption/internal/caption"
)

const (
	clearScreen     = "\033[H\033[2J"
	terminalHeader  = "===== REAL-TIME TRANSLATION ====="
	originalHeader  = "----- Original Text -----"
	translateHeader = "----- Translation -----"
)

// TerminalSink redraws the whole screen on every update.
type TerminalSink struct {
	mu              sync.Mutex
	w               io.Writer
	showTranslation bool
}

func NewTerminalSink(w io.Writer, showTranslation bool) *TerminalSink {
	return &TerminalSink{w: w, showTranslation: showTranslation}
}

func (s *TerminalSink) OnTranscriptUpdated(transcription, translation string) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(terminalHeader)
	b.WriteString("\n\n")
	b.WriteString(originalHeader)
	b.WriteString("\n")
	b.WriteString(caption.Format(transcription))
	b.WriteString("\n")
	if s.showTranslation {
		b.WriteString("\n")
		b.WriteString(translateHeader)
		b.WriteString("\n")
		b.WriteString(caption.Format(translation))
		b.WriteString("\n")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, b.String()); err != nil {
		slog.Debug("terminal caption write failed", "error", err)
	}
}
