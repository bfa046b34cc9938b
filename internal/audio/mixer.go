package audio

// Mixer combines Opus packets from several speakers into one mono stream.
type Mixer interface {
	WriteOpusPacket(speakerID string, opus []byte)
	// MixFrame pops at most one queued frame per speaker and returns their
	// clamped sum. ok is false when no speaker had audio queued.
	MixFrame() (samples []float32, ok bool)
	Close()
}

type MixerFactory func() (Mixer, error)
