// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for minigram.
//
// USABILITY: liner gives readline-style editing and persistent history.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/config"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the minigram
// config directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// NewTerminalLineReader is the App.NewLineReader used on terminals.
func NewTerminalLineReader() (LineReader, error) {
	if err := RequiresTTY("read input"); err != nil {
		return nil, err
	}
	return NewChatCLI(), nil
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

const chatHelp = `Commands:
  /refresh, /r    Reload messages
  /help, /?       Show this help
  /quit, /q       Leave the chat
Anything else is sent as a message.`

// chat runs the interactive REPL for one chat.
//
//	minigram chat <chat-id>
func (a *App) chat(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	chatID := p.Positional(0)
	if chatID == "" {
		return ErrMissingArgument("chat-id", "minigram chat <chat-id>")
	}
	if args.JSON {
		return NewValidationError("--json", "true", "the interactive chat has no JSON mode")
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if a.NewLineReader == nil {
		return &TTYRequiredError{Operation: "chat"}
	}

	r := a.messageRenderer()
	if args.Plain {
		r.markdown = nil
	}

	if err := a.printHistory(ctx, chatID, r); err != nil {
		return err
	}

	reader, err := a.NewLineReader()
	if err != nil {
		return err
	}
	defer reader.Close()

	fmt.Fprintln(a.Out, DimStyle.Render("Type /help for commands, /quit to leave."))
	for {
		input, err := reader.ReadInput(PromptStyle.Render("> "))
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed input all end the session.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				a.Logger.Debug("chat input ended", zap.Error(err))
			}
			fmt.Fprintln(a.Out)
			return nil
		}

		input = strings.TrimSpace(input)
		switch strings.ToLower(input) {
		case "":
			continue
		case "/quit", "/q", "/exit", "exit", "quit":
			return nil
		case "/help", "/?":
			fmt.Fprintln(a.Out, chatHelp)
			continue
		case "/refresh", "/r":
			if err := a.printHistory(ctx, chatID, r); err != nil {
				fmt.Fprintf(a.Err, "%s %s\n", ErrorStyle.Render("[Error]"), describeError(err))
			}
			continue
		}

		msg, err := a.Syncer.Send(ctx, chatID, input)
		if err != nil {
			fmt.Fprintf(a.Err, "%s %s\n", ErrorStyle.Render("[Error]"), describeError(err))
			continue
		}
		fmt.Fprintln(a.Out, r.format(msg))
	}
}

func (a *App) printHistory(ctx context.Context, chatID string, r messageRenderer) error {
	msgs, err := a.Syncer.LoadMessages(ctx, chatID)
	if err != nil {
		return err
	}
	title := chatID
	if chat, ok := a.Syncer.Chats().Find(chatID); ok {
		title = chat.DisplayTitle()
	}
	fmt.Fprintln(a.Out, TitleStyle.Render(title))
	r.writeAll(a.Out, msgs)
	return nil
}
