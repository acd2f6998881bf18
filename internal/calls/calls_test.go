// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package calls

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/minigram/internal/model"
)

type authFlag bool

func (a authFlag) IsAuthorized() bool { return bool(a) }

type fakeCallAPI struct {
	join       model.CallJoin
	err        error
	lastChatID string
	lastCallID string
	calls      int
}

func (f *fakeCallAPI) CreateCall(_ context.Context, chatID string) (model.CallJoin, error) {
	f.calls++
	f.lastChatID = chatID
	return f.join, f.err
}

func (f *fakeCallAPI) JoinCall(_ context.Context, callID string) (model.CallJoin, error) {
	f.calls++
	f.lastCallID = callID
	return f.join, f.err
}

var sampleJoin = model.CallJoin{CallID: "k1", Room: "room-k1", Token: "jt", LiveKitURL: "wss://media"}

func TestService_StartAndJoinShareShape(t *testing.T) {
	api := &fakeCallAPI{join: sampleJoin}
	s := NewService(api, authFlag(true), nil, nil)
	ctx := context.Background()

	started, err := s.Start(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, "", api.lastChatID)

	joined, err := s.Join(ctx, " k1 ")
	require.NoError(t, err)
	assert.Equal(t, "k1", api.lastCallID)

	assert.Equal(t, started, joined)
}

func TestService_RequiresSession(t *testing.T) {
	api := &fakeCallAPI{join: sampleJoin}
	s := NewService(api, authFlag(false), nil, nil)

	_, err := s.Start(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = s.Join(context.Background(), "k1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Zero(t, api.calls)
}

func TestService_JoinRequiresCallID(t *testing.T) {
	api := &fakeCallAPI{}
	s := NewService(api, authFlag(true), nil, nil)

	_, err := s.Join(context.Background(), "\t")
	assert.ErrorIs(t, err, ErrMissingCallID)
	assert.Zero(t, api.calls)
}

func TestService_PropagatesBackendError(t *testing.T) {
	boom := errors.New("boom")
	s := NewService(&fakeCallAPI{err: boom}, authFlag(true), nil, nil)

	_, err := s.Start(context.Background(), "c1")
	assert.ErrorIs(t, err, boom)
}

func TestService_EnterUnavailable(t *testing.T) {
	s := NewService(&fakeCallAPI{}, authFlag(true), nil, nil)
	assert.ErrorIs(t, s.Enter(context.Background(), sampleJoin), ErrMediaUnavailable)
}

type recordingRoom struct{ got model.CallJoin }

func (r *recordingRoom) Enter(_ context.Context, join model.CallJoin) error {
	r.got = join
	return nil
}

func TestService_EnterCustomRoom(t *testing.T) {
	room := &recordingRoom{}
	s := NewService(&fakeCallAPI{}, authFlag(true), room, nil)

	require.NoError(t, s.Enter(context.Background(), sampleJoin))
	assert.Equal(t, sampleJoin, room.got)
}
