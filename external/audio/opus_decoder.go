//go:build opus

package audio

import "github.com/hraban/opus"

func newOpusDecoder() (opusDecoder, error) {
	return opus.NewDecoder(opusSampleRate, opusChannels)
}
