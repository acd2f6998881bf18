// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, verify, bot, logout and me.

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/model"
)

// SessionData is the --json payload of the sign-in commands. The token is
// never printed.
type SessionData struct {
	Authorized bool        `json:"authorized"`
	User       *model.User `json:"user,omitempty"`
}

// CodeRequestData is the --json payload of "login" without a code.
type CodeRequestData struct {
	Phone string `json:"phone"`
	Sent  bool   `json:"sent"`
}

// login requests a code and, on a terminal, prompts for it.
//
//	minigram login <phone> [--name NAME] [--code CODE]
func (a *App) login(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	phone := strings.TrimSpace(p.Positional(0))
	if phone == "" {
		return ErrMissingArgument("phone", "minigram login +15550001")
	}
	if err := a.requireBackend(ctx); err != nil {
		return err
	}

	name := p.Flag("name")
	code := p.Flag("code")

	if code == "" {
		if err := a.Client.RequestAuthCode(ctx, phone); err != nil {
			return err
		}
		code = a.promptCode(args, phone)
		if code == "" {
			return a.emit(args, "login", CodeRequestData{Phone: phone, Sent: true}, func(w io.Writer) {
				fmt.Fprintf(w, "Code sent to %s.\n", phone)
				fmt.Fprintf(w, "%s\n", DimStyle.Render("Finish with: minigram verify "+phone+" <code>"))
			})
		}
	}

	return a.completeVerify(ctx, args, "login", phone, code, name)
}

// promptCode asks for the login code on a terminal. It returns "" when
// prompting is unavailable or the user gave up.
func (a *App) promptCode(args Args, phone string) string {
	if args.JSON || a.NewLineReader == nil {
		return ""
	}
	reader, err := a.NewLineReader()
	if err != nil {
		a.Logger.Debug("line reader unavailable", zap.Error(err))
		return ""
	}
	defer reader.Close()

	fmt.Fprintf(a.Out, "Code sent to %s.\n", phone)
	code, err := reader.ReadInput("Code: ")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(code)
}

// verify completes phone login.
//
//	minigram verify <phone> <code> [name...]
func (a *App) verify(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	phone := strings.TrimSpace(p.Positional(0))
	code := strings.TrimSpace(p.Positional(1))
	if phone == "" || code == "" {
		return ErrMissingArgument("phone and code", "minigram verify +15550001 123456 Alice")
	}
	if err := a.requireBackend(ctx); err != nil {
		return err
	}
	name := p.FlagOrDefault("name", JoinPositionalArgs(p, 2))
	return a.completeVerify(ctx, args, "verify", phone, code, name)
}

func (a *App) completeVerify(ctx context.Context, args Args, command, phone, code, name string) error {
	auth, err := a.Client.VerifyCode(ctx, phone, code, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	return a.storeSession(ctx, args, command, auth)
}

// bot completes bot login.
//
//	minigram bot <code> [name...]
func (a *App) bot(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	code := strings.TrimSpace(p.Positional(0))
	if code == "" {
		return ErrMissingArgument("code", "minigram bot <bot-code> helper")
	}
	if err := a.requireBackend(ctx); err != nil {
		return err
	}
	name := p.FlagOrDefault("name", JoinPositionalArgs(p, 1))

	auth, err := a.Client.AuthorizeBot(ctx, code, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	return a.storeSession(ctx, args, "bot", auth)
}

func (a *App) storeSession(ctx context.Context, args Args, command string, auth model.AuthResult) error {
	if err := a.Session.Update(ctx, auth); err != nil {
		return NewCommandError(command, "save session", "could not persist the session", err)
	}
	user := auth.User
	return a.emit(args, command, SessionData{Authorized: true, User: &user}, func(w io.Writer) {
		fmt.Fprintf(w, "%s Signed in as %s\n", SuccessStyle.Render("[OK]"), user.DisplayName)
	})
}

// logout forgets the stored session. It works with the backend disabled
// and when already signed out.
func (a *App) logout(ctx context.Context, args Args) error {
	if err := a.Session.Clear(ctx); err != nil {
		return NewCommandError("logout", "clear session", "could not remove the session", err)
	}
	return a.emit(args, "logout", SessionData{Authorized: false}, func(w io.Writer) {
		fmt.Fprintln(w, "Signed out.")
	})
}

// me fetches the profile of the session owner.
func (a *App) me(ctx context.Context, args Args) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	user, err := a.Client.FetchMe(ctx)
	if err != nil {
		return err
	}
	return a.emit(args, "me", user, func(w io.Writer) {
		writeUser(w, user)
	})
}
