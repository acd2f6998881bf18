// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config resolves where the messaging backend lives and whether the
// client should talk to it at all, and loads local client settings.
//
// # Key Types
//
//   - Resolver: backend base URL and enabled flag (env > persisted > default)
//   - Settings: local client settings from config.toml / config.json
//   - Watcher: reloads Settings when the file changes on disk
//
// # Resolution Order
//
// Base URL:
//   - MINI_BACKEND_URL (when it parses as an absolute URL)
//   - persisted override (when it parses as an absolute URL)
//   - DefaultBaseURL
//
// Enabled flag:
//   - MINI_BACKEND_MODE ("0" disables, any other value enables)
//   - persisted flag
//   - disabled
//
// # Usage
//
//	settings, err := config.Load()
//	resolver := config.NewResolver(store)
//	base, err := resolver.BaseURL(ctx)
//	if !resolver.IsEnabled(ctx) { ... }
package config
