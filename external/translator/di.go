package translator

import (
	"github.com/foxseedlab/livecaption/internal/config"
	"github.com/foxseedlab/livecaption/internal/translator"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (translator.Translator, error) {
		c := do.MustInvoke[*config.Config](i)
		switch c.TranslatorProvider {
		case config.TranslatorProviderAzure:
			return NewAzureTranslator(AzureConfig{
				Key:      c.AzureTranslatorKey,
				Region:   c.AzureTranslatorRegion,
				Endpoint: c.AzureTranslatorEndpoint,
			}), nil
		case config.TranslatorProviderOpenAI:
			return NewOpenAITranslator(OpenAIConfig{
				APIKey:  c.OpenAIAPIKey,
				BaseURL: c.OpenAIBaseURL,
				Model:   c.OpenAITranslateModel,
			})
		default:
			return translator.Passthrough{}, nil
		}
	})
	do.Provide(injector, func(i do.Injector) (translator.LanguageDetector, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.SourceLanguage != "" || !c.TranslationEnabled() {
			return translator.NoDetector{}, nil
		}
		return NewLinguaDetector(), nil
	})
}
