package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/livecaption/internal/audio"
	"github.com/foxseedlab/livecaption/internal/discord"
)

const mixInterval = frameSizeMs * time.Millisecond

// DiscordSource captures a voice channel, mixing every human speaker into
// one 48kHz mono stream.
type DiscordSource struct {
	client    discord.Client
	guildID   string
	channelID string
	newMixer  audio.MixerFactory
}

func NewDiscordSource(client discord.Client, guildID, channelID string, newMixer audio.MixerFactory) *DiscordSource {
	return &DiscordSource{
		client:    client,
		guildID:   guildID,
		channelID: channelID,
		newMixer:  newMixer,
	}
}

func (s *DiscordSource) SampleRate() int {
	return opusSampleRate
}

func (s *DiscordSource) Start(ctx context.Context, onFrame func(audio.Frame)) error {
	mixer, err := s.newMixer()
	if err != nil {
		return fmt.Errorf("create mixer: %w", err)
	}
	defer mixer.Close()

	vc, err := s.client.JoinVoiceChannel(s.guildID, s.channelID)
	if err != nil {
		return err
	}
	defer func() {
		if err := vc.Disconnect(); err != nil {
			slog.Warn("voice disconnect failed", "channel_id", s.channelID, "error", err)
		}
	}()
	slog.Info("joined voice channel", "guild_id", s.guildID, "channel_id", s.channelID)

	receiveDone := make(chan struct{})
	go func() {
		defer close(receiveDone)
		vc.ReceiveAudio(func(userID string, opus []byte) {
			if s.client.IsBot(s.guildID, userID) {
				return
			}
			mixer.WriteOpusPacket(userID, opus)
		})
	}()

	ticker := time.NewTicker(mixInterval)
	defer ticker.Stop()
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-receiveDone:
			return fmt.Errorf("voice receive stopped: %w", audio.ErrSourceClosed)
		case <-ticker.C:
			samples, ok := mixer.MixFrame()
			if !ok {
				continue
			}
			seq++
			onFrame(audio.Frame{Seq: seq, Samples: samples})
		}
	}
}

// BlockSamples is the mono sample count of one 20ms mixed frame.
func (s *DiscordSource) BlockSamples() int {
	return samplesPerFrame / opusChannels
}
