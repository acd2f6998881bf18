// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is an in-memory implementation of the minigram backend
// protocol for local development and end-to-end tests.
//
// It speaks the same JSON-over-HTTP contract as the production backend:
// phone/code and bot-code login, chats, messages and call provisioning.
// Bearer tokens are HS256 JWTs. Login codes are not delivered anywhere;
// they are written to the log (or fixed with Config.DevCode).
//
// # Key Types
//
//   - Server: gin engine plus in-memory state
//   - Config: secrets, codes and the media URL handed out with calls
//   - Claims: JWT payload for session and call tokens
//
// # Usage
//
//	srv, err := devserver.New(devserver.Config{JWTSecret: "dev"}, logger)
//	ts := httptest.NewServer(srv.Handler())
//
// Nothing is persisted; restarting the server forgets every user.
package devserver
