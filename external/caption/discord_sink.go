package caption

import (
	"context"
	"log/slog"
	"strings"

	"github.com/foxseedlab/livecaption/internal/caption"
	"github.com/foxseedlab/livecaption/internal/discord"
)

const discordCaptionMaxRunes = 1900

type captionUpdate struct {
	transcription string
	translation   string
}

// DiscordSink keeps one message in a text channel up to date with the tail
// of the captions. Updates that arrive while a request is in flight are
// coalesced so only the latest text is sent.
type DiscordSink struct {
	client          discord.Client
	channelID       string
	showTranslation bool
	updates         chan captionUpdate
	messageID       string
}

func NewDiscordSink(client discord.Client, channelID string, showTranslation bool) *DiscordSink {
	return &DiscordSink{
		client:          client,
		channelID:       channelID,
		showTranslation: showTranslation,
		updates:         make(chan captionUpdate, 1),
	}
}

func (s *DiscordSink) OnTranscriptUpdated(transcription, translation string) {
	u := captionUpdate{transcription: transcription, translation: translation}
	for {
		select {
		case s.updates <- u:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func (s *DiscordSink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-s.updates:
			s.publish(s.render(u))
		}
	}
}

func (s *DiscordSink) render(u captionUpdate) string {
	var b strings.Builder
	b.WriteString(caption.Format(u.transcription))
	if s.showTranslation && u.translation != "" {
		b.WriteString("\n\n")
		b.WriteString(caption.Format(u.translation))
	}
	return caption.TailRunes(b.String(), discordCaptionMaxRunes)
}

func (s *DiscordSink) publish(content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	if s.messageID != "" {
		err := s.client.EditChannelMessage(s.channelID, s.messageID, content)
		if err == nil {
			return
		}
		slog.Warn("failed to edit caption message, posting a new one", "channel_id", s.channelID, "message_id", s.messageID, "error", err)
	}
	id, err := s.client.SendChannelMessage(s.channelID, content)
	if err != nil {
		slog.Warn("failed to post caption message", "channel_id", s.channelID, "error", err)
		return
	}
	s.messageID = id
}
