// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// ChatKind tags a chat. The set is open: servers may send values this
// client does not know, and those are carried through untouched.
type ChatKind string

const (
	ChatKindDirect ChatKind = "direct"
	ChatKindGroup  ChatKind = "group"
)

// Chat is a conversation created server-side.
type Chat struct {
	ID        string     `json:"id"`
	Kind      ChatKind   `json:"kind"`
	Title     *string    `json:"title,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UnmarshalJSON decodes a Chat, requiring id and kind.
func (c *Chat) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        *string    `json:"id"`
		Kind      *string    `json:"kind"`
		Title     *string    `json:"title"`
		CreatedAt *time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	id, err := required("Chat", "id", wire.ID)
	if err != nil {
		return err
	}
	kind, err := required("Chat", "kind", wire.Kind)
	if err != nil {
		return err
	}

	*c = Chat{
		ID:        id,
		Kind:      ChatKind(kind),
		Title:     wire.Title,
		CreatedAt: wire.CreatedAt,
	}
	return nil
}

// DisplayTitle returns the chat title, falling back to a label derived
// from the kind for unnamed chats.
func (c Chat) DisplayTitle() string {
	if c.Title != nil && *c.Title != "" {
		return *c.Title
	}
	if c.Kind == ChatKindGroup {
		return "Group"
	}
	return "Direct"
}
