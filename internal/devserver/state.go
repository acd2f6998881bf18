// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/minigram/internal/model"
)

var (
	errNotFound  = errors.New("not found")
	errNotMember = errors.New("not a member of this chat")

	errCallNotFound = errors.New("call not found")
)

type chatRecord struct {
	chat    model.Chat
	members []string
}

type callRecord struct {
	id     string
	room   string
	chatID string
}

// state is the whole in-memory backend.
type state struct {
	mu sync.Mutex

	now func() time.Time

	users     map[string]*model.User // by id
	byPhone   map[string]string      // phone -> user id
	codes     map[string]string      // phone -> pending login code
	chats     map[string]*chatRecord
	chatOrder []string // newest first
	messages  map[string][]model.Message
	calls     map[string]*callRecord
}

func newState(now func() time.Time) *state {
	return &state{
		now:      now,
		users:    make(map[string]*model.User),
		byPhone:  make(map[string]string),
		codes:    make(map[string]string),
		chats:    make(map[string]*chatRecord),
		messages: make(map[string][]model.Message),
		calls:    make(map[string]*callRecord),
	}
}

// =============================================================================
// USERS
// =============================================================================

func (s *state) setCode(phone, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
}

// consumeCode checks and removes the pending code for phone.
func (s *state) consumeCode(phone, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	want, ok := s.codes[phone]
	if !ok || want != code {
		return false
	}
	delete(s.codes, phone)
	return true
}

// upsertPhoneUser returns the user registered to phone, creating it on
// first login. A non-empty name replaces the display name.
func (s *state) upsertPhoneUser(phone, name string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byPhone[phone]; ok {
		u := s.users[id]
		if name != "" {
			u.DisplayName = name
		}
		return *u
	}

	if name == "" {
		name = phone
	}
	u := &model.User{ID: uuid.NewString(), Phone: phone, DisplayName: name}
	s.users[u.ID] = u
	s.byPhone[phone] = u.ID
	return *u
}

// createBotUser registers a fresh bot account. Bots have no phone.
func (s *state) createBotUser(name string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &model.User{ID: uuid.NewString(), Phone: "", DisplayName: name}
	s.users[u.ID] = u
	return *u
}

func (s *state) user(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

// =============================================================================
// CHATS
// =============================================================================

func (s *state) isMember(chatID, userID string) (bool, error) {
	rec, ok := s.chats[chatID]
	if !ok {
		return false, errNotFound
	}
	return slices.Contains(rec.members, userID), nil
}

// chatsFor lists userID's chats, newest first.
func (s *state) chatsFor(userID string) []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Chat, 0)
	for _, id := range s.chatOrder {
		rec := s.chats[id]
		if slices.Contains(rec.members, userID) {
			out = append(out, rec.chat)
		}
	}
	return out
}

// directChat returns the existing direct chat between a and b, or creates
// one. created reports whether a new chat was made.
func (s *state) directChat(a, b string) (chat model.Chat, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[b]; !ok {
		return model.Chat{}, false, errNotFound
	}

	for _, id := range s.chatOrder {
		rec := s.chats[id]
		if rec.chat.Kind != model.ChatKindDirect {
			continue
		}
		if slices.Contains(rec.members, a) && slices.Contains(rec.members, b) && (a != b || len(rec.members) == 1) {
			return rec.chat, false, nil
		}
	}

	createdAt := s.now()
	chat = model.Chat{ID: uuid.NewString(), Kind: model.ChatKindDirect, CreatedAt: &createdAt}
	members := []string{a}
	if a != b {
		members = append(members, b)
	}
	s.chats[chat.ID] = &chatRecord{chat: chat, members: members}
	s.chatOrder = slices.Insert(s.chatOrder, 0, chat.ID)
	return chat, true, nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// recentMessages returns up to limit of the newest messages, newest first.
func (s *state) recentMessages(chatID, userID string, limit int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.isMember(chatID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errNotMember
	}

	all := s.messages[chatID]
	out := make([]model.Message, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *state) addMessage(chatID, senderID, body string) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.isMember(chatID, senderID)
	if err != nil {
		return model.Message{}, err
	}
	if !member {
		return model.Message{}, errNotMember
	}

	text := body
	msg := model.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		SenderID:  senderID,
		Body:      &text,
		CreatedAt: s.now(),
	}
	s.messages[chatID] = append(s.messages[chatID], msg)
	return msg, nil
}

// =============================================================================
// CALLS
// =============================================================================

func (s *state) createCall(chatID, userID string) (callRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chatID != "" {
		member, err := s.isMember(chatID, userID)
		if err != nil {
			return callRecord{}, err
		}
		if !member {
			return callRecord{}, errNotMember
		}
	}

	id := uuid.NewString()
	rec := &callRecord{id: id, room: "room-" + id, chatID: chatID}
	s.calls[id] = rec
	return *rec, nil
}

// joinCall looks up a call. Calls bound to a chat admit only its members.
func (s *state) joinCall(id, userID string) (callRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.calls[id]
	if !ok {
		return callRecord{}, errCallNotFound
	}
	if rec.chatID != "" {
		member, err := s.isMember(rec.chatID, userID)
		if err != nil {
			return callRecord{}, err
		}
		if !member {
			return callRecord{}, errNotMember
		}
	}
	return *rec, nil
}
