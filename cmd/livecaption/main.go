package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimiro1/banner"
	audioimpl "github.com/foxseedlab/livecaption/external/audio"
	captionimpl "github.com/foxseedlab/livecaption/external/caption"
	configloader "github.com/foxseedlab/livecaption/external/config"
	"github.com/foxseedlab/livecaption/external/discord"
	"github.com/foxseedlab/livecaption/external/httpserver"
	transcriberimpl "github.com/foxseedlab/livecaption/external/transcriber"
	translatorimpl "github.com/foxseedlab/livecaption/external/translator"
	webhookimpl "github.com/foxseedlab/livecaption/external/webhook"
	"github.com/foxseedlab/livecaption/internal/config"
	discordpkg "github.com/foxseedlab/livecaption/internal/discord"
	"github.com/foxseedlab/livecaption/internal/observe"
	"github.com/foxseedlab/livecaption/internal/session"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	discordConnectTimeout = 20 * time.Second
	shutdownTimeout       = 10 * time.Second
)

var version = "dev"

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	printBanner(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "frame_source", cfg.FrameSource, "stt_provider", cfg.STTProvider, "translator_provider", cfg.TranslatorProvider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "livecaption", ServiceVersion: version})
	if err != nil {
		slog.Error("failed to initialize metrics provider", "error", err)
		os.Exit(1)
	}
	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg, metrics)

	code := 0
	if err := run(ctx, cfg, injector); err != nil {
		slog.Error("livecaption stopped with error", "error", err)
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	report := injector.Shutdown()
	slog.Debug("dependencies shut down", "report", report)
	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Warn("metrics provider shutdown failed", "error", err)
	}
	os.Exit(code)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// initLogger sends logs to stderr while the terminal sink owns stdout.
func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter(cfg), &slog.HandlerOptions{Level: logLevel})))
}

func logWriter(cfg *config.Config) io.Writer {
	if cfg.CaptionTerminal {
		return os.Stderr
	}
	return os.Stdout
}

func printBanner(cfg *config.Config) {
	tpl := "{{ .Title \"livecaption\" \"\" 0 }}\nVersion: " + version + "\n"
	banner.Init(logWriter(cfg), true, cfg.IsDevelopment(), bytes.NewBufferString(tpl))
}

func setupDI(cfg *config.Config, metrics *observe.Metrics) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, metrics)
	discord.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	translatorimpl.RegisterDI(injector)
	captionimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	session.RegisterDI(injector)
	httpserver.RegisterDI(injector)

	return injector
}

func run(ctx context.Context, cfg *config.Config, injector do.Injector) error {
	if cfg.DiscordEnabled() {
		dc, err := do.Invoke[discordpkg.Client](injector)
		if err != nil {
			return err
		}
		connectCtx, cancel := context.WithTimeout(ctx, discordConnectTimeout)
		err = dc.Connect(connectCtx)
		cancel()
		if err != nil {
			return err
		}
		slog.Info("startup: discord connected")
		defer func() {
			if err := dc.Close(); err != nil {
				slog.Error("discord close failed", "error", err)
			}
		}()
	}

	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		return err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	g, gctx := errgroup.WithContext(runCtx)
	if cfg.HTTPAddr != "" {
		srv, err := do.Invoke[*httpserver.Server](injector)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}
	g.Go(func() error {
		// the HTTP server follows the session down
		defer cancelRun()
		return manager.Run(gctx)
	})
	return g.Wait()
}
