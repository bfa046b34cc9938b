package caption

import (
	"os"

	"github.com/foxseedlab/livecaption/internal/caption"
	"github.com/foxseedlab/livecaption/internal/config"
	"github.com/foxseedlab/livecaption/internal/discord"
	"github.com/foxseedlab/livecaption/internal/observe"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*WebSocketHub, error) {
		metrics, _ := do.Invoke[*observe.Metrics](i)
		return NewWebSocketHub(metrics), nil
	})
	do.Provide(injector, func(i do.Injector) (caption.Sink, error) {
		c := do.MustInvoke[*config.Config](i)
		var sinks caption.Multi
		if c.CaptionTerminal {
			sinks = append(sinks, NewTerminalSink(os.Stdout, c.TranslationEnabled()))
		}
		if c.DiscordCaptionChannelID != "" {
			dc := do.MustInvoke[discord.Client](i)
			sinks = append(sinks, NewDiscordSink(dc, c.DiscordCaptionChannelID, c.TranslationEnabled()))
		}
		if c.HTTPAddr != "" {
			sinks = append(sinks, do.MustInvoke[*WebSocketHub](i))
		}
		return sinks, nil
	})
}
