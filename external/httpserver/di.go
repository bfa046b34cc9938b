package httpserver

import (
	captionimpl "github.com/foxseedlab/livecaption/external/caption"
	"github.com/foxseedlab/livecaption/internal/config"
	"github.com/foxseedlab/livecaption/internal/session"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		c := do.MustInvoke[*config.Config](i)
		manager := do.MustInvoke[*session.Manager](i)
		hub := do.MustInvoke[*captionimpl.WebSocketHub](i)
		return NewServer(c.HTTPAddr, manager.Ready, hub), nil
	})
}
