// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// MediaPlaceholder is shown for messages that carry no text body.
const MediaPlaceholder = "[media]"

// Message is a single chat entry. Within a chat, CreatedAt defines the
// display order.
type Message struct {
	ID        string     `json:"id"`
	ChatID    string     `json:"chat_id"`
	SenderID  string     `json:"sender_id"`
	Body      *string    `json:"body,omitempty"`
	MediaID   *string    `json:"media_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

// UnmarshalJSON decodes a Message, requiring id, chat_id, sender_id and
// created_at. A malformed timestamp fails the decode.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        *string    `json:"id"`
		ChatID    *string    `json:"chat_id"`
		SenderID  *string    `json:"sender_id"`
		Body      *string    `json:"body"`
		MediaID   *string    `json:"media_id"`
		CreatedAt *time.Time `json:"created_at"`
		EditedAt  *time.Time `json:"edited_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var out Message
	var err error
	if out.ID, err = required("Message", "id", wire.ID); err != nil {
		return err
	}
	if out.ChatID, err = required("Message", "chat_id", wire.ChatID); err != nil {
		return err
	}
	if out.SenderID, err = required("Message", "sender_id", wire.SenderID); err != nil {
		return err
	}
	if out.CreatedAt, err = required("Message", "created_at", wire.CreatedAt); err != nil {
		return err
	}
	out.Body = wire.Body
	out.MediaID = wire.MediaID
	out.EditedAt = wire.EditedAt

	*m = out
	return nil
}

// Text returns the message body, or MediaPlaceholder for non-text payloads.
func (m Message) Text() string {
	if m.Body == nil {
		return MediaPlaceholder
	}
	return *m.Body
}

// IsOutgoing reports whether the message was sent by the given local user.
func (m Message) IsOutgoing(localUserID string) bool {
	return localUserID != "" && m.SenderID == localUserID
}

// IsEdited reports whether the server recorded an edit.
func (m Message) IsEdited() bool {
	return m.EditedAt != nil
}
