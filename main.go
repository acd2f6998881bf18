// minigram - terminal client for the minigram messaging backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/backend"
	"github.com/jeranaias/minigram/internal/calls"
	"github.com/jeranaias/minigram/internal/cli"
	"github.com/jeranaias/minigram/internal/config"
	"github.com/jeranaias/minigram/internal/logging"
	"github.com/jeranaias/minigram/internal/session"
	"github.com/jeranaias/minigram/internal/storage"
	"github.com/jeranaias/minigram/internal/timeline"
	"github.com/jeranaias/minigram/internal/ui/tui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	// Commands that need no state.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return
	case cli.CmdUnknown:
		err := cli.UnknownCommandError(args.Name)
		cli.DisplayError(os.Stderr, args.Name, err, args.JSON)
		if !args.JSON {
			cli.PrintUsage(os.Stderr)
		}
		os.Exit(cli.GetExitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cmd, args)
	stop()

	if err != nil {
		cli.DisplayError(os.Stderr, args.Name, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

// run builds the process-wide instances once and dispatches cmd.
func run(ctx context.Context, cmd cli.Command, args cli.Args) error {
	settings, loadErr := config.Load()
	if settings == nil {
		return loadErr
	}

	logger, err := newLogger(settings, args)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if loadErr != nil {
		logger.Warn("settings file ignored, using defaults", zap.Error(loadErr))
	}

	kv, err := storage.OpenSQLite(ctx, config.ExpandPath(settings.State.Path))
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer kv.Close()

	resolver := config.NewResolver(kv, config.WithResolverLogger(logger))
	sess, err := session.Open(ctx, kv, logger)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	baseURL := resolver.BaseURL(ctx)
	client := backend.NewClient(baseURL, sess).
		WithTimeout(settings.Timeout()).
		WithRateLimit(settings.Backend.RateLimit, settings.Backend.RateBurst).
		WithUserAgent(settings.Backend.UserAgent).
		WithLogger(logger)
	logger.Debug("backend resolved", zap.String("base_url", baseURL.String()))

	syncer := timeline.NewSyncer(client, settings.UI.PageSize, logger)
	callService := calls.NewService(client, sess, calls.UnavailableRoom{}, logger)

	app := &cli.App{
		Settings:      settings,
		Resolver:      resolver,
		Session:       sess,
		Client:        client,
		Syncer:        syncer,
		Calls:         callService,
		Logger:        logger,
		Out:           os.Stdout,
		Err:           os.Stderr,
		Markdown:      cli.IsStdoutTTY() && !settings.UI.PlainText && !args.Plain,
		NewLineReader: newLineReader(),
	}
	app.StartTUI = func(ctx context.Context) error {
		settingsPath, _ := config.PathTOML()
		return tui.Run(ctx, tui.Options{
			Syncer:       syncer,
			Session:      sess,
			Calls:        callService,
			Theme:        settings.UI.Theme,
			SettingsPath: settingsPath,
			Logger:       logger,
		})
	}

	return app.Run(ctx, cmd, args)
}

// newLogger writes to the configured log file so command output stays
// clean. --verbose raises the level to debug.
func newLogger(settings *config.Settings, args cli.Args) (*zap.Logger, error) {
	opts := logging.Options{
		Env:   settings.Log.Env,
		Level: settings.Log.Level,
		File:  config.ExpandPath(settings.Log.File),
	}
	if args.Verbose {
		opts.Level = "debug"
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("start logging: %w", err)
	}
	return logger, nil
}

// newLineReader returns the terminal line reader factory when stdin is
// interactive.
func newLineReader() func() (cli.LineReader, error) {
	if !cli.CanPrompt() {
		return nil
	}
	return func() (cli.LineReader, error) {
		return cli.NewTerminalLineReader()
	}
}
