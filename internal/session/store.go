// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/model"
	"github.com/jeranaias/minigram/internal/storage"
)

// Keys in the durable store.
const (
	KeyToken = "mini_backend_token"
	KeyUser  = "mini_backend_user"
)

// ErrEmptyToken is returned by Update when the auth result has no token.
var ErrEmptyToken = errors.New("session: auth result has an empty token")

// =============================================================================
// STORE
// =============================================================================

// Store is the single source of truth for whether this client is signed in.
// Reads are served from memory; Update and Clear write through to the KV in
// one batch before the in-memory copy changes. It is safe for concurrent use.
type Store struct {
	kv     storage.KV
	logger *zap.Logger

	mu    sync.RWMutex
	token string
	user  *model.User
}

// Open loads any persisted session from kv. A half-written or corrupt
// session is treated as signed out.
func Open(ctx context.Context, kv storage.KV, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{kv: kv, logger: logger}

	token, hasToken, err := kv.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load session token: %w", err)
	}
	rawUser, hasUser, err := kv.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}

	switch {
	case !hasToken && !hasUser:
		return s, nil
	case hasToken != hasUser || len(token) == 0:
		logger.Warn("ignoring incomplete persisted session",
			zap.Bool("has_token", hasToken), zap.Bool("has_user", hasUser))
		return s, nil
	}

	var user model.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		logger.Warn("ignoring unreadable persisted user", zap.Error(err))
		return s, nil
	}

	s.token = string(token)
	s.user = &user
	return s, nil
}

// CurrentToken returns the bearer token, if signed in.
func (s *Store) CurrentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return "", false
	}
	return s.token, true
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Snapshot returns token and user from the same instant.
func (s *Store) Snapshot() (token string, user model.User, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return "", model.User{}, false
	}
	return s.token, *s.user, true
}

// IsAuthorized reports whether both token and user are present.
func (s *Store) IsAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// Update replaces the session with the token and user from auth.
func (s *Store) Update(ctx context.Context, auth model.AuthResult) error {
	if auth.Token == "" {
		return ErrEmptyToken
	}
	rawUser, err := json.Marshal(auth.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var b storage.Batch
	b.Set(KeyToken, []byte(auth.Token))
	b.Set(KeyUser, rawUser)
	if err := s.kv.Apply(ctx, &b); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	user := auth.User
	s.token = auth.Token
	s.user = &user
	s.logger.Info("session updated", zap.String("user_id", user.ID))
	return nil
}

// Clear removes the session. Clearing an empty session is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b storage.Batch
	b.Delete(KeyToken)
	b.Delete(KeyUser)
	if err := s.kv.Apply(ctx, &b); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	if s.user != nil {
		s.logger.Info("session cleared", zap.String("user_id", s.user.ID))
	}
	s.token = ""
	s.user = nil
	return nil
}
