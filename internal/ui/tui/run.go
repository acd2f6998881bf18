// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/config"
)

// Run shows the UI until the user quits or ctx is cancelled. Theme edits
// to the settings file are applied live.
func Run(ctx context.Context, opts Options) error {
	if opts.Syncer == nil {
		return errors.New("tui: syncer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.SettingsPath != "" {
		w, err := config.WatchSettings(opts.SettingsPath, func(s *config.Settings) {
			p.Send(ThemeChangedMsg{Mode: s.UI.Theme})
		}, logger)
		if err != nil {
			logger.Warn("settings watch disabled", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
