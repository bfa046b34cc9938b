package transcriber

import "context"

// Request carries one segment in the encodings adapters commonly need.
// PCM is 16-bit little-endian mono; WAV wraps the same samples.
type Request struct {
	Seq        uint64
	PCM        []byte
	WAV        []byte
	SampleRate int
	Language   string
}

type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}
