package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func TestPCM16_Clamps(t *testing.T) {
	pcm := PCM16([]float32{0, 1, -1, 2, -2})
	want := []int16{0, 32767, -32767, 32767, -32768}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if got != w {
			t.Fatalf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestPCM16ToMono_Downmix(t *testing.T) {
	pcm := make([]byte, 8)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(pcm[2:], uint16(int16(-16384)))
	binary.LittleEndian.PutUint16(pcm[4:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(pcm[6:], uint16(int16(16384)))

	mono := PCM16ToMono(pcm, 2)
	if len(mono) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(mono))
	}
	if mono[0] != 0 {
		t.Fatalf("expected opposite channels to cancel, got %v", mono[0])
	}
	if mono[1] != 0.5 {
		t.Fatalf("expected 0.5, got %v", mono[1])
	}
}

func TestInt16ToMono(t *testing.T) {
	mono := Int16ToMono([]int16{32767, 32767, -32768, 0}, 2)
	if len(mono) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(mono))
	}
	if mono[0] < 0.99 || mono[1] != -0.5 {
		t.Fatalf("unexpected downmix: %v", mono)
	}
}

func TestEncodeWAV_Header(t *testing.T) {
	pcm := PCM16([]float32{0.1, -0.1, 0.2})
	wav := EncodeWAV(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("unexpected wav length %d", len(wav))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Fatalf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 32000 {
		t.Fatalf("byte rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("data size = %d", got)
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Fatal("payload mismatch")
	}
}

func TestDurations(t *testing.T) {
	if got := SamplesDuration(44100, 44100); got != time.Second {
		t.Fatalf("SamplesDuration = %s", got)
	}
	if got := DurationSamples(30*time.Millisecond, 44100); got != 1323 {
		t.Fatalf("DurationSamples = %d", got)
	}
	f := Frame{Samples: make([]float32, 480)}
	if got := f.Duration(48000); got != 10*time.Millisecond {
		t.Fatalf("Frame.Duration = %s", got)
	}
}
