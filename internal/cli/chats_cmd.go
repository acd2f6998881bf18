// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats_cmd.go - chats, messages and send.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/minigram/internal/model"
	"github.com/jeranaias/minigram/internal/timeline"
)

// ChatsData is the --json payload of "chats".
type ChatsData struct {
	Chats   []model.Chat `json:"chats"`
	Created *model.Chat  `json:"created,omitempty"`
}

// MessagesData is the --json payload of "messages".
type MessagesData struct {
	ChatID   string          `json:"chat_id"`
	Messages []model.Message `json:"messages"`
}

// chats lists chats in server order, or opens a direct chat.
//
//	minigram chats
//	minigram chats new <user-id>
func (a *App) chats(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	switch sub := p.Positional(0); sub {
	case "", "list", "ls":
	case "new", "create":
		return a.newChat(ctx, args, p.Positional(1))
	default:
		return &ValidationError{Field: "subcommand", Value: sub, Reason: "unknown chats subcommand", Example: "minigram chats new <user-id>"}
	}

	if err := a.requireSession(ctx); err != nil {
		return err
	}
	chats, err := a.Syncer.RefreshChats(ctx)
	if err != nil {
		return err
	}
	return a.emit(args, "chats", ChatsData{Chats: chats}, func(w io.Writer) {
		writeChatTable(w, chats)
	})
}

// newChat refreshes the list, then puts the new chat at its head.
func (a *App) newChat(ctx context.Context, args Args, userID string) error {
	if userID == "" {
		return ErrMissingArgument("user-id", "minigram chats new <user-id>")
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if _, err := a.Syncer.RefreshChats(ctx); err != nil {
		return err
	}
	chat, err := a.Syncer.CreateDirectChat(ctx, userID)
	if err != nil {
		return err
	}

	chats := a.Syncer.Chats().Chats()
	return a.emit(args, "chats", ChatsData{Chats: chats, Created: &chat}, func(w io.Writer) {
		fmt.Fprintf(w, "%s Opened chat %s\n", SuccessStyle.Render("[OK]"), chat.ID)
		writeChatTable(w, chats)
	})
}

// messages prints a chat's messages oldest first.
//
//	minigram messages <chat-id> [--limit N]
func (a *App) messages(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	chatID := p.Positional(0)
	if chatID == "" {
		return ErrMissingArgument("chat-id", "minigram messages <chat-id> --limit 20")
	}
	limit, ok, err := p.FlagInt("limit")
	if err != nil {
		return err
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	syncer := a.Syncer
	if ok {
		syncer = timeline.NewSyncer(a.Client, limit, a.Logger)
	}
	msgs, err := syncer.LoadMessages(ctx, chatID)
	if err != nil {
		return err
	}

	r := a.messageRenderer()
	if args.Plain {
		r.markdown = nil
	}
	return a.emit(args, "messages", MessagesData{ChatID: chatID, Messages: msgs}, func(w io.Writer) {
		r.writeAll(w, msgs)
	})
}

// send posts one text message.
//
//	minigram send <chat-id> <text...>
func (a *App) send(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	chatID := p.Positional(0)
	text := JoinPositionalArgs(p, 1)
	if chatID == "" || text == "" {
		return ErrMissingArgument("chat-id and text", `minigram send <chat-id> "hello there"`)
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	msg, err := a.Syncer.Send(ctx, chatID, text)
	if err != nil {
		return err
	}
	return a.emit(args, "send", msg, func(w io.Writer) {
		if args.Quiet {
			return
		}
		fmt.Fprintf(w, "%s Sent %s\n", SuccessStyle.Render("[OK]"), DimStyle.Render(msg.ID))
	})
}
