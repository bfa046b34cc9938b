package caption

import "context"

// Sink receives the full transcript and translation after every merge that
// changed them. Implementations must not block the caller for long.
type Sink interface {
	OnTranscriptUpdated(transcription, translation string)
}

type SinkFunc func(transcription, translation string)

func (f SinkFunc) OnTranscriptUpdated(transcription, translation string) {
	f(transcription, translation)
}

// Runner is implemented by sinks that deliver from their own goroutine.
type Runner interface {
	Run(ctx context.Context) error
}

type Multi []Sink

func (m Multi) OnTranscriptUpdated(transcription, translation string) {
	for _, s := range m {
		s.OnTranscriptUpdated(transcription, translation)
	}
}

// Runners returns the members that need a delivery goroutine.
func (m Multi) Runners() []Runner {
	var out []Runner
	for _, s := range m {
		if r, ok := s.(Runner); ok {
			out = append(out, r)
		}
	}
	return out
}
