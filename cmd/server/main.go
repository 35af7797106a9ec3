// Package main implements the entry point for the kanji-ink server, which
// captures handwriting, scores it against reference stroke data and renders
// ink for review and external assessment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/kanji-ink/internal/config"
	"github.com/phrazzld/kanji-ink/internal/platform/logger"
	"github.com/phrazzld/kanji-ink/internal/redact"
)

// options are the command line flags.
type options struct {
	configPath string
	migrate    string
	verbose    bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.migrate, "migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "log applied migrations after the command")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("kanji-ink server failed", redact.ErrorAttr(err))
		os.Exit(1)
	}
}

// run loads configuration, sets up logging and either runs a migration
// command or serves until SIGINT or SIGTERM.
func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("content_source", cfg.Content.Source),
		slog.Bool("assessor_enabled", cfg.LLM.Enabled))

	if opts.migrate != "" {
		return runMigrations(cfg, log, opts.migrate, opts.verbose)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
