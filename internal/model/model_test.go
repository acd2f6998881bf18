// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DECODE TESTS
// =============================================================================

func TestMessage_DecodeFull(t *testing.T) {
	data := `{
		"id": "m1",
		"chat_id": "c1",
		"sender_id": "u1",
		"body": "hello",
		"media_id": null,
		"created_at": "2025-03-01T10:00:00Z",
		"edited_at": "2025-03-01T10:05:00Z"
	}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(data), &msg))

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "c1", msg.ChatID)
	assert.Equal(t, "u1", msg.SenderID)
	require.NotNil(t, msg.Body)
	assert.Equal(t, "hello", *msg.Body)
	assert.Nil(t, msg.MediaID)
	assert.True(t, msg.CreatedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, msg.IsEdited())
}

func TestMessage_MissingCreatedAtFails(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"id":"m1","chat_id":"c1","sender_id":"u1"}`), &msg)

	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing), "want MissingFieldError, got %v", err)
	assert.Equal(t, "Message", missing.Type)
	assert.Equal(t, "created_at", missing.Field)
}

func TestMessage_MalformedTimestampFails(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"id":"m1","chat_id":"c1","sender_id":"u1","created_at":"yesterday"}`), &msg)
	require.Error(t, err)
}

func TestChat_UnknownKindIsPreserved(t *testing.T) {
	var chat Chat
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c9","kind":"channel"}`), &chat))

	assert.Equal(t, ChatKind("channel"), chat.Kind)
	assert.Nil(t, chat.Title)
	assert.Nil(t, chat.CreatedAt)
}

func TestChat_NullKindFails(t *testing.T) {
	var chat Chat
	err := json.Unmarshal([]byte(`{"id":"c9","kind":null}`), &chat)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "kind", missing.Field)
}

func TestAuthResult_NestedUserErrorsPropagate(t *testing.T) {
	var auth AuthResult
	err := json.Unmarshal([]byte(`{"token":"t","user":{"id":"u1","phone":"+1"}}`), &auth)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "User", missing.Type)
	assert.Equal(t, "display_name", missing.Field)
}

func TestAuthResult_MissingUserFails(t *testing.T) {
	var auth AuthResult
	err := json.Unmarshal([]byte(`{"token":"t"}`), &auth)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "user", missing.Field)
}

func TestCallJoin_Decode(t *testing.T) {
	var join CallJoin
	data := `{"call_id":"k1","room":"room-k1","token":"jt","livekit_url":"wss://media.example:7880"}`
	require.NoError(t, json.Unmarshal([]byte(data), &join))

	assert.Equal(t, CallJoin{CallID: "k1", Room: "room-k1", Token: "jt", LiveKitURL: "wss://media.example:7880"}, join)

	err := json.Unmarshal([]byte(`{"call_id":"k1","room":"r","token":"t"}`), &join)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "livekit_url", missing.Field)
}

// =============================================================================
// ENCODE TESTS
// =============================================================================

func TestUser_EncodeUsesSnakeCaseAndOmitsAbsentAvatar(t *testing.T) {
	data, err := json.Marshal(User{ID: "u1", Phone: "+15550001", DisplayName: "Ann"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","phone":"+15550001","display_name":"Ann"}`, string(data))

	var back User
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(User{ID: "u1", Phone: "+15550001", DisplayName: "Ann"}))
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

func TestChat_DisplayTitle(t *testing.T) {
	title := "Team"
	empty := ""

	tests := []struct {
		name string
		chat Chat
		want string
	}{
		{"titled", Chat{Kind: ChatKindGroup, Title: &title}, "Team"},
		{"untitled group", Chat{Kind: ChatKindGroup}, "Group"},
		{"untitled direct", Chat{Kind: ChatKindDirect}, "Direct"},
		{"empty title", Chat{Kind: ChatKindGroup, Title: &empty}, "Group"},
		{"unknown kind", Chat{Kind: "broadcast"}, "Direct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chat.DisplayTitle())
		})
	}
}

func TestMessage_TextAndDirection(t *testing.T) {
	body := "hi"
	text := Message{SenderID: "me", Body: &body}
	media := Message{SenderID: "them"}

	assert.Equal(t, "hi", text.Text())
	assert.Equal(t, MediaPlaceholder, media.Text())
	assert.True(t, text.IsOutgoing("me"))
	assert.False(t, media.IsOutgoing("me"))
	assert.False(t, text.IsOutgoing(""))
}

func TestUser_Equal(t *testing.T) {
	a, b := "a", "b"
	base := User{ID: "u", Phone: "p", DisplayName: "n"}

	withA := base
	withA.AvatarMediaID = &a
	withB := base
	withB.AvatarMediaID = &b

	assert.True(t, base.Equal(base))
	assert.False(t, base.Equal(withA))
	assert.False(t, withA.Equal(withB))
	assert.True(t, withA.Equal(User{ID: "u", Phone: "p", DisplayName: "n", AvatarMediaID: &a}))
}
