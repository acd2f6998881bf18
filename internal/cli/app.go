// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Command dispatch over the injected client stack.

package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/backend"
	"github.com/jeranaias/minigram/internal/calls"
	"github.com/jeranaias/minigram/internal/config"
	"github.com/jeranaias/minigram/internal/session"
	"github.com/jeranaias/minigram/internal/timeline"
)

// App holds the process-wide instances every command works against. main
// builds exactly one App at startup.
type App struct {
	Settings *config.Settings
	Resolver *config.Resolver
	Session  *session.Store
	Client   *backend.Client
	Syncer   *timeline.Syncer
	Calls    *calls.Service
	Logger   *zap.Logger

	Out io.Writer
	Err io.Writer

	// Markdown renders message bodies with glamour. main enables it for
	// terminals unless plain text is configured.
	Markdown bool

	// NewLineReader opens an interactive line reader for login prompts
	// and the chat REPL. Nil disables prompting.
	NewLineReader func() (LineReader, error)

	// StartTUI runs the full-screen UI. Nil means the UI is unavailable.
	StartTUI func(ctx context.Context) error
}

// LineReader reads edited input lines. ChatCLI is the terminal version.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// Run executes cmd. Errors are returned, not displayed.
func (a *App) Run(ctx context.Context, cmd Command, args Args) error {
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}

	switch cmd {
	case CmdHelp:
		PrintUsage(a.Out)
		return nil
	case CmdVersion:
		return a.version(args)
	case CmdLogin:
		return a.login(ctx, args)
	case CmdVerify:
		return a.verify(ctx, args)
	case CmdBot:
		return a.bot(ctx, args)
	case CmdLogout:
		return a.logout(ctx, args)
	case CmdMe:
		return a.me(ctx, args)
	case CmdStatus:
		return a.status(ctx, args)
	case CmdChats:
		return a.chats(ctx, args)
	case CmdMessages:
		return a.messages(ctx, args)
	case CmdSend:
		return a.send(ctx, args)
	case CmdChat:
		return a.chat(ctx, args)
	case CmdCall:
		return a.call(ctx, args)
	case CmdConfig:
		return a.config(ctx, args)
	case CmdTUI:
		return a.tui(ctx, args)
	default:
		return UnknownCommandError(args.Name)
	}
}

// =============================================================================
// GATES
// =============================================================================

// requireBackend refuses while the backend feature flag is off.
func (a *App) requireBackend(ctx context.Context) error {
	if !a.Resolver.IsEnabled(ctx) {
		return ErrBackendDisabled
	}
	return nil
}

// requireSession additionally refuses without a stored session.
func (a *App) requireSession(ctx context.Context) error {
	if err := a.requireBackend(ctx); err != nil {
		return err
	}
	if !a.Session.IsAuthorized() {
		return ErrNotSignedIn
	}
	return nil
}

// tui starts the full-screen UI once the session gate passes.
func (a *App) tui(ctx context.Context, args Args) error {
	if args.JSON {
		return NewValidationError("json", "--json", "the full-screen UI has no JSON mode")
	}
	if a.StartTUI == nil {
		return NewCommandError("tui", "start", "the full-screen UI is not available in this build", nil)
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := RequiresTTY("tui"); err != nil {
		return err
	}
	return a.StartTUI(ctx)
}

// =============================================================================
// OUTPUT
// =============================================================================

// emit prints data as a JSON envelope in --json mode, otherwise runs human.
func (a *App) emit(args Args, command string, data any, human func(w io.Writer)) error {
	if args.JSON {
		return NewJSONResponse(command, data).Print(a.Out)
	}
	human(a.Out)
	return nil
}

// note prints a one-line confirmation unless --quiet or --json.
func (a *App) note(args Args, format string, v ...any) {
	if args.Quiet || args.JSON {
		return
	}
	fmt.Fprintf(a.Out, format+"\n", v...)
}

func (a *App) messageRenderer() messageRenderer {
	r := messageRenderer{}
	if user, ok := a.Session.CurrentUser(); ok {
		r.selfID = user.ID
	}
	if a.Markdown {
		theme := "auto"
		width := DefaultTerminalWidth
		if a.Settings != nil {
			theme = a.Settings.UI.Theme
		}
		if IsStdoutTTY() {
			width = GetTerminalWidth()
		}
		r.markdown = newMarkdownRenderer(theme, width)
	}
	return r
}

func (a *App) pageSize() int {
	if a.Settings != nil && a.Settings.UI.PageSize > 0 {
		return a.Settings.UI.PageSize
	}
	return backend.DefaultMessageLimit
}

// =============================================================================
// VERSION
// =============================================================================

// VersionData is the --json payload of "version".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

func (a *App) version(args Args) error {
	data := VersionData{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
	return a.emit(args, "version", data, PrintVersion)
}
