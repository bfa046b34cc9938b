package session

import (
	"github.com/foxseedlab/livecaption/internal/audio"
	"github.com/foxseedlab/livecaption/internal/caption"
	"github.com/foxseedlab/livecaption/internal/config"
	"github.com/foxseedlab/livecaption/internal/observe"
	"github.com/foxseedlab/livecaption/internal/transcriber"
	"github.com/foxseedlab/livecaption/internal/translator"
	"github.com/foxseedlab/livecaption/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		source := do.MustInvoke[audio.FrameSource](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)
		tr := do.MustInvoke[translator.Translator](i)
		detector := do.MustInvoke[translator.LanguageDetector](i)
		sink := do.MustInvoke[caption.Sink](i)
		wh := do.MustInvoke[webhook.Sender](i)
		metrics, _ := do.Invoke[*observe.Metrics](i)
		return NewManager(cfg, source, stt, tr, detector, sink, wh, metrics), nil
	})
}
