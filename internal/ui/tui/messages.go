// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import "github.com/jeranaias/minigram/internal/model"

// ChatsLoadedMsg carries the result of a chat list refresh.
type ChatsLoadedMsg struct {
	Chats []model.Chat
	Err   error
}

// MessagesLoadedMsg carries a chat's message page.
type MessagesLoadedMsg struct {
	ChatID   string
	Messages []model.Message
	Err      error
}

// MessageSentMsg reports a send. Text is what was typed, so a failed send
// can be put back into the compose line.
type MessageSentMsg struct {
	ChatID  string
	Text    string
	Message model.Message
	Err     error
}

// ChatCreatedMsg reports a new direct chat.
type ChatCreatedMsg struct {
	Chat model.Chat
	Err  error
}

// CallReadyMsg reports a started or joined call. MediaErr is set when the
// media room could not be entered.
type CallReadyMsg struct {
	Join     model.CallJoin
	Joined   bool
	Err      error
	MediaErr error
}

// ThemeChangedMsg asks the model to restyle for a new theme mode.
type ThemeChangedMsg struct {
	Mode string
}
