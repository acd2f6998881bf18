// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the typed HTTP client for the minigram messaging
// backend.
//
// Every operation maps to one JSON-over-HTTP call. Authenticated calls carry
// "Authorization: Bearer <token>" when the TokenSource has a token; when it
// does not, the header is simply left off and the server decides.
//
// # Key Types
//
//   - Client: executes the nine backend operations
//   - TokenSource: read-only view of the current bearer token
//   - HTTPStatusError: status >= 400, with the server's {"error"} message if any
//   - DecodeError: a 2xx/3xx body that did not match the expected shape
//   - ErrInvalidResponse: the response could not be used at all
//
// # Usage
//
//	client := backend.NewClient(resolver.BaseURL(ctx), sess).
//	    WithTimeout(30 * time.Second).
//	    WithLogger(logger)
//
//	auth, err := client.VerifyCode(ctx, "+15550100", "123456", "Ada")
//	var statusErr *backend.HTTPStatusError
//	if errors.As(err, &statusErr) && statusErr.StatusCode == 401 { ... }
//
// The client performs no retries and no deduplication. Retrying a create or
// send after a timeout may produce duplicates on the server.
package backend
