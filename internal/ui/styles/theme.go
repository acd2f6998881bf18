// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Mode is the configured mode, normalized.
	Mode         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER / STATUS
	// ==========================================================================

	Header        lipgloss.Style
	HeaderTitle   lipgloss.Style
	HeaderSubtle  lipgloss.Style
	StatusBar     lipgloss.Style
	StatusOK      lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style

	// ==========================================================================
	// PANES
	// ==========================================================================

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	ChatItem    lipgloss.Style
	ChatActive  lipgloss.Style
	ChatMeta    lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	Outgoing       lipgloss.Style
	Incoming       lipgloss.Style
	OutgoingSender lipgloss.Style
	IncomingSender lipgloss.Style
	Timestamp      lipgloss.Style
	Empty          lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	Help             lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Unknown
// modes behave like auto.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()
	mode = NormalizeMode(mode)

	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// NormalizeMode lower-cases mode and maps unknown values to ModeAuto.
func NormalizeMode(mode string) string {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case ModeDark, ModeLight:
		return m
	default:
		return ModeAuto
	}
}

// Color resolves an adaptive color for this theme's background.
func (t *Theme) Color(c lipgloss.AdaptiveColor) lipgloss.Color {
	if t.IsDark {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Color(Cyan)).
		Background(t.Color(SurfaceDim)).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Color(Cyan))

	t.HeaderSubtle = lipgloss.NewStyle().
		Foreground(t.Color(TextSecondary))

	t.StatusBar = lipgloss.NewStyle().
		Foreground(t.Color(TextSecondary)).
		Background(t.Color(SurfaceDim)).
		Padding(0, 1)

	t.StatusOK = lipgloss.NewStyle().Foreground(t.Color(Emerald))
	t.StatusWarning = lipgloss.NewStyle().Foreground(t.Color(Amber))
	t.StatusError = lipgloss.NewStyle().Foreground(t.Color(Rose)).Bold(true)

	t.Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Color(Overlay))

	t.PaneFocused = t.Pane.
		BorderForeground(t.Color(Purple))

	t.ChatItem = lipgloss.NewStyle().
		Foreground(t.Color(TextPrimary)).
		PaddingLeft(1)

	t.ChatActive = lipgloss.NewStyle().
		Foreground(t.Color(Purple)).
		Background(t.Color(SelectionBg)).
		Bold(true).
		PaddingLeft(1)

	t.ChatMeta = lipgloss.NewStyle().
		Foreground(t.Color(TextMuted)).
		PaddingLeft(1)

	t.Outgoing = lipgloss.NewStyle().
		Foreground(t.Color(OutgoingFg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.Color(OutgoingBorder)).
		PaddingLeft(1)

	t.Incoming = lipgloss.NewStyle().
		Foreground(t.Color(IncomingFg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.Color(IncomingBorder)).
		PaddingLeft(1)

	t.OutgoingSender = lipgloss.NewStyle().Foreground(t.Color(OutgoingBorder)).Bold(true)
	t.IncomingSender = lipgloss.NewStyle().Foreground(t.Color(IncomingBorder)).Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(t.Color(TextMuted))

	t.Empty = lipgloss.NewStyle().
		Foreground(t.Color(TextMuted)).
		Italic(true)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(t.Color(Cyan)).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(t.Color(TextMuted))

	t.Help = lipgloss.NewStyle().
		Foreground(t.Color(TextMuted))
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, chat list hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// ChatListWidth returns the column width of the chat pane for the layout.
func (t *Theme) ChatListWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return 0
	case LayoutMedium:
		return 24
	default:
		return 32
	}
}
