package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/webitel/hangman-client/config"
	"github.com/webitel/hangman-client/internal/adapter/gameapi"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ServiceName      = "hangman-client"
	ServiceNamespace = "webitel"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

const flagsHelp = `--config_file, --api_url, --timeout, --log_level, --log_format, --log_file, --web_addr`

func Run() error {
	app := &cli.App{
		Name:    ServiceName,
		Usage:   "Hangman client for the game service",
		Version: fmt.Sprintf("%s (%s, %s, built %s)", version, commit, branch, buildTimestamp),
		Commands: []*cli.Command{
			tuiCmd(),
			webCmd(),
			healthCmd(),
		},
	}

	return app.Run(os.Args)
}

func tuiCmd() *cli.Command {
	return &cli.Command{
		Name:            "tui",
		Aliases:         []string{"t"},
		Usage:           "Play in the terminal",
		ArgsUsage:       flagsHelp,
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			return serve(c, tuiFrontend)
		},
	}
}

func webCmd() *cli.Command {
	return &cli.Command{
		Name:            "web",
		Aliases:         []string{"w"},
		Usage:           "Serve the game to a local browser",
		ArgsUsage:       flagsHelp,
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			return serve(c, webFrontend)
		},
	}
}

func healthCmd() *cli.Command {
	return &cli.Command{
		Name:            "health",
		Usage:           "Check that the game service answers",
		ArgsUsage:       flagsHelp,
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.Args().Slice())
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
			client, err := gameapi.New(cfg, noop.NewTracerProvider(), logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Context, cfg.Service.Timeout)
			defer cancel()

			if err := client.Health(ctx); err != nil {
				return cli.Exit(fmt.Sprintf("%s: unhealthy: %v", cfg.Service.BaseURL, err), 1)
			}
			fmt.Fprintf(c.App.Writer, "%s: ok\n", cfg.Service.BaseURL)
			return nil
		},
	}
}

func serve(c *cli.Context, fe frontend) error {
	cfg, err := config.LoadConfig(c.Args().Slice())
	if err != nil {
		return err
	}
	app := NewApp(cfg, fe)

	if err := app.Start(c.Context); err != nil {
		return err
	}

	// signals and the tui's quit both land here
	<-app.Done()

	slog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(ctx)
}
