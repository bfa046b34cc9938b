//go:build !opus

package audio

func newOpusDecoder() (opusDecoder, error) {
	return nil, errOpusUnavailable
}
