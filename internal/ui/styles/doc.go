// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and lipgloss styles for the
minigram terminal UI.

Colors are declared as lipgloss.AdaptiveColor pairs. A Theme resolves each
pair to a concrete color once, according to the configured mode:

	auto  - detect the terminal background with termenv
	dark  - always use the dark variants
	light - always use the light variants

# Usage

	theme := styles.NewTheme(settings.UI.Theme)
	header := theme.Header.Render("minigram")
*/
package styles
