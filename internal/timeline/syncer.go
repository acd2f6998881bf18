// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package timeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/minigram/internal/model"
)

var (
	// ErrEmptyMessage is returned by Send for blank text.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrEmptyUserID is returned by CreateDirectChat for a blank user id.
	ErrEmptyUserID = errors.New("user id is empty")
	// ErrEmptyChatID is returned when a chat id is blank.
	ErrEmptyChatID = errors.New("chat id is empty")
)

// API is the subset of backend.Client the Syncer drives.
type API interface {
	ListChats(ctx context.Context) ([]model.Chat, error)
	CreateDirectChat(ctx context.Context, userID string) (model.Chat, error)
	ListMessages(ctx context.Context, chatID string, limit int) ([]model.Message, error)
	SendMessage(ctx context.Context, chatID, body string) (model.Message, error)
}

// Syncer applies backend results to the local views. Failed calls leave
// the views untouched. No call is retried or deduplicated.
type Syncer struct {
	api    API
	limit  int
	logger *zap.Logger

	chats ChatList

	mu    sync.Mutex
	views map[string]*MessageView
}

// NewSyncer creates a Syncer. pageSize <= 0 uses the backend default.
func NewSyncer(api API, pageSize int, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		api:    api,
		limit:  pageSize,
		logger: logger,
		views:  make(map[string]*MessageView),
	}
}

// Chats returns the shared chat list.
func (s *Syncer) Chats() *ChatList {
	return &s.chats
}

// View returns the message view for chatID, creating it on first use.
func (s *Syncer) View(chatID string) *MessageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[chatID]
	if !ok {
		v = NewMessageView(chatID)
		s.views[chatID] = v
	}
	return v
}

// RefreshChats reloads the chat list from the server.
func (s *Syncer) RefreshChats(ctx context.Context) ([]model.Chat, error) {
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	s.chats.Replace(chats)
	s.logger.Debug("chats refreshed", zap.Int("count", len(chats)))
	return s.chats.Chats(), nil
}

// CreateDirectChat opens a direct chat with userID and puts it first.
func (s *Syncer) CreateDirectChat(ctx context.Context, userID string) (model.Chat, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Chat{}, ErrEmptyUserID
	}
	chat, err := s.api.CreateDirectChat(ctx, userID)
	if err != nil {
		return model.Chat{}, err
	}
	s.chats.Insert(chat)
	return chat, nil
}

// LoadMessages fetches a page for chatID and installs it sorted.
func (s *Syncer) LoadMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, ErrEmptyChatID
	}
	msgs, err := s.api.ListMessages(ctx, chatID, s.limit)
	if err != nil {
		return nil, err
	}
	v := s.View(chatID)
	v.Replace(msgs)
	return v.Messages(), nil
}

// Send posts text to chatID and appends the stored message to its view.
// Text is trimmed and NFC-normalized first.
func (s *Syncer) Send(ctx context.Context, chatID, text string) (model.Message, error) {
	if strings.TrimSpace(chatID) == "" {
		return model.Message{}, ErrEmptyChatID
	}
	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		return model.Message{}, ErrEmptyMessage
	}
	msg, err := s.api.SendMessage(ctx, chatID, text)
	if err != nil {
		return model.Message{}, err
	}
	s.View(chatID).Append(msg)
	return msg, nil
}
