// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the minigram command line.
//
// Commands run against an App that main builds once at startup from the
// settings, resolver, session store, API client, syncer and call service.
// Nothing in this package holds global client state.
//
// # Key Types
//
//   - Command, Args: the parsed command line
//   - App: injected dependencies plus the command handlers
//   - ArgParser: flag/positional splitting for subcommands
//   - JSONResponse: the --json envelope
//
// # Usage
//
//	cmd, args := cli.Parse()
//	app := &cli.App{Resolver: resolver, Session: sess, Client: client, ...}
//	if err := app.Run(ctx, cmd, args); err != nil {
//	    cli.DisplayError(os.Stderr, args.Name, err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// Backend commands refuse with ErrBackendDisabled while the backend flag
// is off. "status", "config" and "logout" always work.
package cli
