// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package tui implements the full-screen minigram client on Bubble Tea.

The screen has three parts: a chat list (bubbles/list) on the left, the
open chat's messages (bubbles/viewport) on the right, and a compose line
(bubbles/textinput) at the bottom. All network work runs in tea.Cmds that
drive a timeline.Syncer, so the views follow the same ordering rules as the
command line: messages ascend by creation time, sent messages are appended
and created chats are inserted at the head of the list.

# Key Types

  - Model: the Bubble Tea model
  - Options: the injected dependencies
  - KeyMap: key bindings

# Usage

	err := tui.Run(ctx, tui.Options{
		Syncer:       syncer,
		Session:      store,
		Calls:        callService,
		Theme:        settings.UI.Theme,
		SettingsPath: path,
		Logger:       logger,
	})
*/
package tui
