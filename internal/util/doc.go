// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the minigram packages.
//
// # Key Functions
//
// Display width:
//   - StringWidth: terminal columns taken by a string
//   - TruncateWidth: cut to a column budget with an ellipsis
//   - PadWidth: right-pad to a column count
//   - FirstLine: first line of a multi-line text
//
// Files:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	// Fit a chat title into a 24-column cell
//	cell := util.PadWidth(util.TruncateWidth(title, 24), 24)
//
//	// Write settings atomically
//	err := util.AtomicWriteFile(path, data, 0600)
package util
