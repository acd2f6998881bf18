// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the signed-in state of this client: the bearer
// token and the profile of the user it belongs to.
//
// The token and user are persisted as two keys in a storage.KV and are
// always written and removed together, so a reader never observes one
// without the other.
//
// # Key Types
//
//   - Store: the persisted token/user pair
//
// # Usage
//
//	sess, err := session.Open(ctx, kv, logger)
//	if err != nil { ... }
//
//	auth, err := client.VerifyCode(ctx, phone, code, name)
//	if err == nil {
//	    err = sess.Update(ctx, auth)
//	}
//
//	if sess.IsAuthorized() { ... }
//	_ = sess.Clear(ctx)
package session
