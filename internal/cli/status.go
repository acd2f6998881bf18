// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Local state overview. Makes no network calls.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/minigram/internal/model"
)

// StatusData is the --json payload of "status".
type StatusData struct {
	Backend    BackendConfigData `json:"backend"`
	Authorized bool              `json:"authorized"`
	User       *model.User       `json:"user,omitempty"`
	StatePath  string            `json:"state_path,omitempty"`
	Version    string            `json:"version"`
}

func (a *App) status(ctx context.Context, args Args) error {
	data := StatusData{
		Backend: backendConfigData(a.Resolver.Resolve(ctx)),
		Version: Version,
	}
	if _, user, ok := a.Session.Snapshot(); ok {
		data.Authorized = true
		data.User = &user
	}
	if a.Settings != nil {
		data.StatePath = a.Settings.State.Path
	}

	return a.emit(args, "status", data, func(w io.Writer) {
		fmt.Fprintln(w, TitleStyle.Render("minigram "+Version))
		writeBackendConfig(w, data.Backend)
		if data.User != nil {
			fmt.Fprintln(w, renderKV("Session", SuccessStyle.Render("signed in")+" as "+data.User.DisplayName))
		} else {
			fmt.Fprintln(w, renderKV("Session", WarningStyle.Render("signed out")))
		}
		if data.StatePath != "" {
			fmt.Fprintln(w, renderKV("State", data.StatePath))
		}
	})
}
