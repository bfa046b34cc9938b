package audio

import (
	"os"

	"github.com/foxseedlab/livecaption/internal/audio"
	"github.com/foxseedlab/livecaption/internal/config"
	"github.com/foxseedlab/livecaption/internal/discord"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue(injector, audio.MixerFactory(NewOpusMixer))
	do.Provide(injector, func(i do.Injector) (audio.FrameSource, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.FrameSource == config.FrameSourceDiscord {
			dc := do.MustInvoke[discord.Client](i)
			newMixer := do.MustInvoke[audio.MixerFactory](i)
			return NewDiscordSource(dc, c.DiscordGuildID, c.DiscordVCID, newMixer), nil
		}
		return NewPCMSource(os.Stdin, c.SampleRate, c.Channels, c.BlockDuration), nil
	})
}
