// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package calls provisions and joins call rooms. Both paths yield the same
// model.CallJoin credential bundle. Entering the media room itself is
// delegated to a Room; the only Room shipped here reports that media is
// unavailable.
package calls

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/model"
)

var (
	// ErrNotAuthorized is returned when no session is signed in.
	ErrNotAuthorized = errors.New("sign in before starting or joining a call")
	// ErrMissingCallID is returned by Join for a blank call id.
	ErrMissingCallID = errors.New("call id is empty")
	// ErrMediaUnavailable is returned by rooms that cannot carry media.
	ErrMediaUnavailable = errors.New("calls are coming soon: media rooms are not available in this client")
)

// API is the subset of backend.Client used for calls.
type API interface {
	CreateCall(ctx context.Context, chatID string) (model.CallJoin, error)
	JoinCall(ctx context.Context, callID string) (model.CallJoin, error)
}

// Authorizer reports whether a session is present. session.Store
// satisfies it.
type Authorizer interface {
	IsAuthorized() bool
}

// Room enters a media room with a credential bundle.
type Room interface {
	Enter(ctx context.Context, join model.CallJoin) error
}

// UnavailableRoom is a Room that always fails with ErrMediaUnavailable.
type UnavailableRoom struct{}

// Enter implements Room.
func (UnavailableRoom) Enter(context.Context, model.CallJoin) error {
	return ErrMediaUnavailable
}

// =============================================================================
// SERVICE
// =============================================================================

// Service runs the create/join handshake.
type Service struct {
	api    API
	auth   Authorizer
	room   Room
	logger *zap.Logger
}

// NewService creates a Service. A nil room means UnavailableRoom.
func NewService(api API, auth Authorizer, room Room, logger *zap.Logger) *Service {
	if room == nil {
		room = UnavailableRoom{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, auth: auth, room: room, logger: logger}
}

// Start creates a call, optionally bound to chatID. A blank chatID creates
// a standalone call.
func (s *Service) Start(ctx context.Context, chatID string) (model.CallJoin, error) {
	if !s.auth.IsAuthorized() {
		return model.CallJoin{}, ErrNotAuthorized
	}
	join, err := s.api.CreateCall(ctx, strings.TrimSpace(chatID))
	if err != nil {
		return model.CallJoin{}, err
	}
	s.logger.Info("call created", zap.String("call_id", join.CallID))
	return join, nil
}

// Join attaches to an existing call.
func (s *Service) Join(ctx context.Context, callID string) (model.CallJoin, error) {
	if !s.auth.IsAuthorized() {
		return model.CallJoin{}, ErrNotAuthorized
	}
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return model.CallJoin{}, ErrMissingCallID
	}
	join, err := s.api.JoinCall(ctx, callID)
	if err != nil {
		return model.CallJoin{}, err
	}
	s.logger.Info("call joined", zap.String("call_id", join.CallID))
	return join, nil
}

// Enter hands join to the configured Room.
func (s *Service) Enter(ctx context.Context, join model.CallJoin) error {
	return s.room.Enter(ctx, join)
}
