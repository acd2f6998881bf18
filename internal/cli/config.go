// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Backend location and feature flag commands.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/minigram/internal/config"
)

// BackendConfigData is the --json payload of "config" and part of
// "status".
type BackendConfigData struct {
	BaseURL       string        `json:"base_url"`
	BaseURLSource config.Source `json:"base_url_source"`
	Enabled       bool          `json:"enabled"`
	EnabledSource config.Source `json:"enabled_source"`
}

func backendConfigData(r config.Resolution) BackendConfigData {
	return BackendConfigData{
		BaseURL:       r.BaseURL.String(),
		BaseURLSource: r.BaseURLSource,
		Enabled:       r.Enabled,
		EnabledSource: r.EnabledSource,
	}
}

// config inspects and changes the persisted backend settings. Environment
// variables still win over anything persisted here.
//
//	minigram config [show]
//	minigram config set-url <url>
//	minigram config reset-url
//	minigram config enable|disable
func (a *App) config(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)

	var err error
	switch sub := p.Positional(0); sub {
	case "", "show":
	case "set-url":
		raw := p.Positional(1)
		u, ok := config.ParseBaseURL(raw)
		if !ok {
			return &ValidationError{Field: "url", Value: raw, Reason: "need an absolute URL with scheme and host", Example: "minigram config set-url http://localhost:8080"}
		}
		err = a.Resolver.SetBaseURL(ctx, u)
	case "reset-url":
		err = a.Resolver.ResetBaseURL(ctx)
	case "enable":
		err = a.Resolver.SetEnabled(ctx, true)
	case "disable":
		err = a.Resolver.SetEnabled(ctx, false)
	default:
		return &ValidationError{Field: "subcommand", Value: sub, Reason: "unknown config subcommand", Example: "minigram config show"}
	}
	if err != nil {
		return NewCommandError("config", p.Positional(0), "could not persist the setting", err)
	}

	data := backendConfigData(a.Resolver.Resolve(ctx))
	return a.emit(args, "config", data, func(w io.Writer) {
		writeBackendConfig(w, data)
	})
}

func writeBackendConfig(w io.Writer, d BackendConfigData) {
	enabled := WarningStyle.Render("disabled")
	if d.Enabled {
		enabled = SuccessStyle.Render("enabled")
	}
	fmt.Fprintln(w, renderKV("Backend URL", d.BaseURL+" "+DimStyle.Render("("+string(d.BaseURLSource)+")")))
	fmt.Fprintln(w, renderKV("Backend", enabled+" "+DimStyle.Render("("+string(d.EnabledSource)+")")))
}
