package caption

import (
	"context"
	"strings"
	"testing"
)

type recordingSink struct {
	calls []string
}

func (r *recordingSink) OnTranscriptUpdated(transcription, translation string) {
	r.calls = append(r.calls, transcription+"|"+translation)
}

type runnerSink struct {
	recordingSink
}

func (r *runnerSink) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	var fn []string
	m := Multi{a, b, SinkFunc(func(tr, tl string) { fn = append(fn, tr) })}

	m.OnTranscriptUpdated("hello", "hola")

	if len(a.calls) != 1 || len(b.calls) != 1 || len(fn) != 1 {
		t.Fatalf("expected every sink to be called once: %d %d %d", len(a.calls), len(b.calls), len(fn))
	}
	if a.calls[0] != "hello|hola" {
		t.Fatalf("unexpected payload %q", a.calls[0])
	}
}

func TestMulti_Runners(t *testing.T) {
	m := Multi{&recordingSink{}, &runnerSink{}}
	if got := len(m.Runners()); got != 1 {
		t.Fatalf("expected 1 runner, got %d", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "collapses whitespace", in: "hello   big\tworld", want: "hello big world"},
		{
			name: "no break before thirteen words",
			in:   "one two three four five six seven eight nine ten eleven twelve.",
			want: "one two three four five six seven eight nine ten eleven twelve.",
		},
		{
			name: "breaks after punctuation past twelve words",
			in:   "one two three four five six seven eight nine ten eleven twelve thirteen, fourteen",
			want: "one two three four five six seven eight nine ten eleven twelve thirteen,\nfourteen",
		},
		{name: "keeps paragraph breaks", in: "First one.\nSecond one.", want: "First one.\nSecond one."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Fatalf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTailRunes(t *testing.T) {
	if got := TailRunes("héllo wörld", 5); got != "wörld" {
		t.Fatalf("TailRunes = %q", got)
	}
	if got := TailRunes("short", 10); got != "short" {
		t.Fatalf("TailRunes = %q", got)
	}
	if got := TailRunes(strings.Repeat("あ", 10), 3); got != "あああ" {
		t.Fatalf("TailRunes = %q", got)
	}
}
