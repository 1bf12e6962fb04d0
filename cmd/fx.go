package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/webitel/hangman-client/config"
	"github.com/webitel/hangman-client/internal/adapter/gameapi"
	"github.com/webitel/hangman-client/internal/adapter/pubsub"
	"github.com/webitel/hangman-client/internal/domain/registry"
	"github.com/webitel/hangman-client/internal/handler/events"
	"github.com/webitel/hangman-client/internal/handler/tui"
	"github.com/webitel/hangman-client/internal/handler/web"
	"github.com/webitel/hangman-client/internal/service"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gopkg.in/natefinch/lumberjack.v2"
)

// frontend selects where logs may go and which modules draw the game.
type frontend struct {
	name string
	// quiet frontends own the terminal, so logs go to a file or nowhere.
	quiet   bool
	modules fx.Option
}

var (
	tuiFrontend = frontend{
		name:    "tui",
		quiet:   true,
		modules: tui.Module,
	}
	webFrontend = frontend{
		name: "web",
		modules: fx.Options(
			pubsub.Module,
			registry.Module,
			service.FeedModule,
			events.Module,
			web.Module,
		),
	}
)

func NewApp(cfg *config.Config, fe frontend) *fx.App {
	return fx.New(appOptions(cfg, fe))
}

func appOptions(cfg *config.Config, fe frontend) fx.Option {
	return fx.Options(
		fx.Supply(cfg, fe),
		fx.Provide(
			ProvideLogger,
			ProvideTracerProvider,
		),
		fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
			logger := &fxevent.SlogLogger{Logger: l.With("component", "fx")}
			logger.UseLogLevel(slog.LevelDebug)
			return logger
		}),
		gameapi.Module,
		service.Module,
		fe.modules,
	)
}

// ProvideLogger builds the process logger. The level follows the config file
// while it is being watched.
func ProvideLogger(lc fx.Lifecycle, cfg *config.Config, fe frontend) *slog.Logger {
	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Log.Level))

	var out io.Writer = os.Stderr
	switch {
	case cfg.Log.File != "":
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		lc.Append(fx.StopHook(rotator.Close))
		out = rotator
	case fe.quiet:
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", ServiceName),
		slog.String("version", version),
		slog.String("frontend", fe.name),
	)
	slog.SetDefault(logger)

	cfg.OnChange(func(c *config.Config) {
		level.Set(parseLevel(c.Log.Level))
		logger.Info("LOG_LEVEL_RELOADED", slog.String("level", c.Log.Level))
	})
	if cfg.Watch(logger) {
		logger.Debug("CONFIG_WATCH_STARTED")
	}

	return logger
}

// ProvideTracerProvider creates the tracer used for outbound game service calls.
// Spans are not exported; they exist so that calls carry a traceparent.
func ProvideTracerProvider(lc fx.Lifecycle) (trace.TracerProvider, error) {
	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.namespace", ServiceNamespace),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		return tp.Shutdown(ctx)
	}))
	return tp, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
