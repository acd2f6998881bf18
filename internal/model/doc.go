// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the records exchanged with the minigram backend.
//
// All types are immutable values. Each one decodes strictly from the
// backend's snake_case JSON: a required key that is absent (or null) is a
// decode error reported as *MissingFieldError, and timestamps must be valid
// RFC 3339 (ISO-8601) strings. Nothing is silently defaulted.
//
// # Key Types
//
//   - User: a backend account (id, phone, display name, optional avatar)
//   - AuthResult: bearer token plus the authenticated User
//   - Chat: a conversation; Kind is an open string enumeration
//   - Message: a chat entry ordered by CreatedAt
//   - CallJoin: credentials for entering a call's media room
//
// # Usage
//
//	var chat model.Chat
//	if err := json.Unmarshal(data, &chat); err != nil {
//	    var missing *model.MissingFieldError
//	    if errors.As(err, &missing) { ... }
//	}
//	fmt.Println(chat.DisplayTitle())
package model
