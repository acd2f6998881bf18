// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/minigram/internal/model"
)

// DefaultMessageLimit is the page size used by ListMessages when limit <= 0.
const DefaultMessageLimit = 50

// =============================================================================
// WIRE ENVELOPES
// =============================================================================

type requestCodeBody struct {
	Phone string `json:"phone"`
}

type verifyCodeBody struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}

type botAuthBody struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type createChatBody struct {
	Kind   model.ChatKind `json:"kind"`
	UserID string         `json:"user_id"`
}

type sendMessageBody struct {
	Body string `json:"body"`
}

type createCallBody struct {
	ChatID string `json:"chat_id,omitempty"`
}

type joinCallBody struct {
	CallID string `json:"call_id"`
}

type sentResponse struct {
	Sent *bool `json:"sent"`
}

type chatsResponse struct {
	Chats *[]model.Chat `json:"chats"`
}

type messagesResponse struct {
	Messages *[]model.Message `json:"messages"`
}

// =============================================================================
// AUTH
// =============================================================================

// RequestAuthCode asks the backend to send a login code to phone out of band.
func (c *Client) RequestAuthCode(ctx context.Context, phone string) error {
	var out sentResponse
	err := c.do(ctx, call{
		op:       "requestAuthCode",
		method:   http.MethodPost,
		segments: []string{"v1", "auth", "request"},
		body:     requestCodeBody{Phone: phone},
	}, &out)
	if err != nil {
		return err
	}
	if out.Sent == nil {
		return &DecodeError{Op: "requestAuthCode", Err: &model.MissingFieldError{Type: "SentResponse", Field: "sent"}}
	}
	return nil
}

// VerifyCode completes phone login with the received code.
func (c *Client) VerifyCode(ctx context.Context, phone, code, name string) (model.AuthResult, error) {
	var out model.AuthResult
	err := c.do(ctx, call{
		op:       "verifyCode",
		method:   http.MethodPost,
		segments: []string{"v1", "auth", "verify"},
		body:     verifyCodeBody{Phone: phone, Code: code, Name: name},
	}, &out)
	return out, err
}

// AuthorizeBot completes bot login with a bot code.
func (c *Client) AuthorizeBot(ctx context.Context, code, name string) (model.AuthResult, error) {
	var out model.AuthResult
	err := c.do(ctx, call{
		op:       "authorizeBot",
		method:   http.MethodPost,
		segments: []string{"v1", "auth", "bot"},
		body:     botAuthBody{Code: code, Name: name},
	}, &out)
	return out, err
}

// FetchMe returns the profile of the token's owner.
func (c *Client) FetchMe(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.do(ctx, call{
		op:       "fetchMe",
		method:   http.MethodGet,
		segments: []string{"v1", "me"},
		auth:     true,
	}, &out)
	return out, err
}

// =============================================================================
// CHATS
// =============================================================================

// ListChats returns the caller's chats in server order.
func (c *Client) ListChats(ctx context.Context) ([]model.Chat, error) {
	var out chatsResponse
	err := c.do(ctx, call{
		op:       "listChats",
		method:   http.MethodGet,
		segments: []string{"v1", "chats"},
		auth:     true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Chats == nil {
		return nil, &DecodeError{Op: "listChats", Err: &model.MissingFieldError{Type: "ChatsResponse", Field: "chats"}}
	}
	return *out.Chats, nil
}

// CreateDirectChat opens (or fetches) the direct chat with userID.
func (c *Client) CreateDirectChat(ctx context.Context, userID string) (model.Chat, error) {
	var out model.Chat
	err := c.do(ctx, call{
		op:       "createDirectChat",
		method:   http.MethodPost,
		segments: []string{"v1", "chats"},
		auth:     true,
		body:     createChatBody{Kind: model.ChatKindDirect, UserID: userID},
	}, &out)
	return out, err
}

// =============================================================================
// MESSAGES
// =============================================================================

// ListMessages returns up to limit messages of chatID in server order.
// Callers sort before display.
func (c *Client) ListMessages(ctx context.Context, chatID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	var out messagesResponse
	err := c.do(ctx, call{
		op:       "listMessages",
		method:   http.MethodGet,
		segments: []string{"v1", "chats", chatID, "messages"},
		query:    url.Values{"limit": []string{strconv.Itoa(limit)}},
		auth:     true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Messages == nil {
		return nil, &DecodeError{Op: "listMessages", Err: &model.MissingFieldError{Type: "MessagesResponse", Field: "messages"}}
	}
	return *out.Messages, nil
}

// SendMessage posts a text message to chatID and returns the stored record.
func (c *Client) SendMessage(ctx context.Context, chatID, body string) (model.Message, error) {
	var out model.Message
	err := c.do(ctx, call{
		op:       "sendMessage",
		method:   http.MethodPost,
		segments: []string{"v1", "chats", chatID, "messages"},
		auth:     true,
		body:     sendMessageBody{Body: body},
	}, &out)
	return out, err
}

// =============================================================================
// CALLS
// =============================================================================

// CreateCall provisions a call room, tied to chatID when it is non-empty.
func (c *Client) CreateCall(ctx context.Context, chatID string) (model.CallJoin, error) {
	var out model.CallJoin
	err := c.do(ctx, call{
		op:       "createCall",
		method:   http.MethodPost,
		segments: []string{"v1", "calls"},
		auth:     true,
		body:     createCallBody{ChatID: chatID},
	}, &out)
	return out, err
}

// JoinCall fetches credentials for an existing call.
func (c *Client) JoinCall(ctx context.Context, callID string) (model.CallJoin, error) {
	var out model.CallJoin
	err := c.do(ctx, call{
		op:       "joinCall",
		method:   http.MethodPost,
		segments: []string{"v1", "calls", "join"},
		auth:     true,
		body:     joinCallBody{CallID: callID},
	}, &out)
	return out, err
}
