// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package timeline keeps the local, ordered views of chats and messages that
// the CLI and TUI render.
//
// # Ordering Rules
//
//   - A loaded message page is stably sorted ascending by CreatedAt.
//   - A sent message is appended to the end of its view without re-sorting.
//   - A newly created chat goes to the head of the chat list.
//
// # Key Types
//
//   - ChatList: ordered chats as last seen from the server plus local inserts
//   - MessageView: ordered messages of one chat
//   - Syncer: runs backend calls and applies the rules to the views
package timeline
