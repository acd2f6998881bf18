// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// call_cmd.go - call start and call join.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/calls"
	"github.com/jeranaias/minigram/internal/model"
)

// CallData is the --json payload of "call".
type CallData struct {
	model.CallJoin
	// MediaError is set when the credentials could not be handed to a
	// media room.
	MediaError string `json:"media_error,omitempty"`
}

// call provisions or joins a call and hands the credentials to the media
// room.
//
//	minigram call start [chat-id]
//	minigram call join <call-id>
func (a *App) call(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	sub := p.Positional(0)
	if sub != "start" && sub != "join" {
		return &ValidationError{Field: "subcommand", Value: sub, Reason: "expected start or join", Example: "minigram call join <call-id>"}
	}
	if sub == "join" && p.Positional(1) == "" {
		return ErrMissingArgument("call-id", "minigram call join <call-id>")
	}
	if err := a.requireBackend(ctx); err != nil {
		return err
	}

	var (
		join model.CallJoin
		err  error
	)
	if sub == "start" {
		join, err = a.Calls.Start(ctx, p.Positional(1))
	} else {
		join, err = a.Calls.Join(ctx, p.Positional(1))
	}
	if errors.Is(err, calls.ErrNotAuthorized) {
		return ErrNotSignedIn
	}
	if err != nil {
		return err
	}

	data := CallData{CallJoin: join}
	if err := a.Calls.Enter(ctx, join); err != nil {
		a.Logger.Info("media room unavailable", zap.String("call_id", join.CallID), zap.Error(err))
		data.MediaError = err.Error()
	}

	return a.emit(args, "call", data, func(w io.Writer) {
		writeCallJoin(w, join)
		if data.MediaError != "" {
			fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("[WARN]"), data.MediaError)
		}
	})
}
