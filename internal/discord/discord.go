package discord

import "context"

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	JoinVoiceChannel(guildID, channelID string) (VoiceConnection, error)
	// SendChannelMessage posts content and returns the new message ID.
	SendChannelMessage(channelID, content string) (string, error)
	EditChannelMessage(channelID, messageID, content string) error
	IsBot(guildID, userID string) bool
}

type VoiceConnection interface {
	Disconnect() error
	// ReceiveAudio blocks, handing every received Opus packet to callback
	// until the connection's receive channel closes.
	ReceiveAudio(callback func(userID string, opus []byte))
}
