// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - Command suggestion for typo correction.
package cli

import (
	"slices"
	"strings"
)

// knownCommands lists every command name and alias, flags excluded.
func knownCommands() []string {
	names := make([]string, 0, len(commandNames))
	for name := range commandNames {
		if !strings.HasPrefix(name, "-") {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// SuggestCommand returns the closest command name to input, or "" when
// nothing is close enough. Ties go to the alphabetically first name.
func SuggestCommand(input string) string {
	input = strings.ToLower(input)

	// Don't suggest for very short inputs (likely intentional)
	if len(input) < 2 {
		return ""
	}

	// One edit for short input, two from 4 chars, three past 8.
	maxDistance := 1
	if len(input) >= 4 {
		maxDistance = 2
	}
	if len(input) > 8 {
		maxDistance = 3
	}

	bestMatch := ""
	bestDistance := -1
	for _, cmd := range knownCommands() {
		distance := levenshteinDistance(input, cmd)
		if distance == 0 {
			return ""
		}
		if distance <= maxDistance && (bestDistance == -1 || distance < bestDistance) {
			bestDistance = distance
			bestMatch = cmd
		}
	}
	return bestMatch
}

// UnknownCommandError builds the usage error for an unrecognized command,
// pointing at the closest known one when there is one.
func UnknownCommandError(name string) error {
	example := "minigram help"
	if s := SuggestCommand(name); s != "" {
		example = "minigram " + s
	}
	return &ValidationError{
		Field:   "command",
		Value:   name,
		Reason:  "unknown command",
		Example: example,
	}
}

// levenshteinDistance is the minimum number of single-byte insertions,
// deletions or substitutions turning s1 into s2.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	cols := len(s2) + 1
	prev := make([]int, cols)
	curr := make([]int, cols)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j < cols; j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[cols-1]
}
