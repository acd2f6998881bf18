// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the process-local durable key-value store used for
// the session token, the cached user profile and the backend overrides.
//
// # Key Types
//
//   - KV: the store contract (Get/Set/Delete plus atomic batches)
//   - SQLiteStore: durable store on a single SQLite file (pure Go driver)
//   - MemoryStore: in-process store for tests and ephemeral runs
//   - Batch: a set of writes applied all-or-nothing
//
// # Usage
//
//	store, err := storage.OpenSQLite(ctx, "~/.minigram/state.db")
//	if err != nil { ... }
//	defer store.Close()
//
//	var b storage.Batch
//	b.Set("token", []byte("abc"))
//	b.Delete("stale")
//	err = store.Apply(ctx, &b)
//
// The store serializes writes within one process. It makes no promise about
// concurrent writers in other processes beyond what SQLite itself provides.
package storage
