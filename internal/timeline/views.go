// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package timeline

import (
	"slices"
	"sync"

	"github.com/jeranaias/minigram/internal/model"
)

// SortMessages returns a copy of msgs ordered by CreatedAt. Equal
// timestamps keep their input order.
func SortMessages(msgs []model.Message) []model.Message {
	out := slices.Clone(msgs)
	slices.SortStableFunc(out, func(a, b model.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// =============================================================================
// CHAT LIST
// =============================================================================

// ChatList is the local chat list. Safe for concurrent use.
type ChatList struct {
	mu    sync.RWMutex
	chats []model.Chat
}

// Replace swaps in a server listing as-is. Server order is kept.
func (l *ChatList) Replace(chats []model.Chat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chats = slices.Clone(chats)
}

// Insert puts chat at the head of the list regardless of its CreatedAt.
func (l *ChatList) Insert(chat model.Chat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chats = slices.Insert(l.chats, 0, chat)
}

// Chats returns a copy of the list.
func (l *ChatList) Chats() []model.Chat {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.chats)
}

// Find returns the chat with id.
func (l *ChatList) Find(id string) (model.Chat, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.chats {
		if c.ID == id {
			return c, true
		}
	}
	return model.Chat{}, false
}

// Len returns the number of chats.
func (l *ChatList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chats)
}

// =============================================================================
// MESSAGE VIEW
// =============================================================================

// MessageView is the ordered message list of one chat. Safe for
// concurrent use.
type MessageView struct {
	chatID string

	mu       sync.RWMutex
	messages []model.Message
}

// NewMessageView creates an empty view for chatID.
func NewMessageView(chatID string) *MessageView {
	return &MessageView{chatID: chatID}
}

// ChatID returns the chat this view belongs to.
func (v *MessageView) ChatID() string {
	return v.chatID
}

// Replace installs a freshly loaded page, sorted by CreatedAt.
func (v *MessageView) Replace(msgs []model.Message) {
	sorted := SortMessages(msgs)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = sorted
}

// Append adds msg at the end without re-sorting. Sent messages carry the
// server's current time and are assumed to sort last.
func (v *MessageView) Append(msg model.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages, msg)
}

// Messages returns a copy of the view.
func (v *MessageView) Messages() []model.Message {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.messages)
}

// Last returns the final message, if any.
func (v *MessageView) Last() (model.Message, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.messages) == 0 {
		return model.Message{}, false
	}
	return v.messages[len(v.messages)-1], true
}

// Len returns the number of messages.
func (v *MessageView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.messages)
}
