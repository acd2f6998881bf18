// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument parsing shared by the minigram subcommands.

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits subcommand arguments into flags and positionals.
// It accepts:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: everything else, in order
//
// A flag is boolean when it is followed by another flag, ends the list, or
// is named in the boolFlags passed to NewArgParser. Declaring boolean flags
// keeps "--force 123" from swallowing a positional.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw. A literal "--" ends flag parsing, so message
// text starting with a dash can still be sent.
//
// Example:
//
//	args := NewArgParser([]string{"9a2b", "--limit", "20"})
//	args.Positional(0)           // "9a2b"
//	n, ok, err := args.FlagInt("limit") // 20, true, nil
func NewArgParser(raw []string, boolFlags ...string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0, len(raw)),
	}

	isBool := make(map[string]bool, len(boolFlags))
	for _, name := range boolFlags {
		isBool[strings.TrimLeft(name, "-")] = true
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			parser.positional = append(parser.positional, raw[i+1:]...)
			break
		}
		// A lone "-" and negative numbers are values, not flags.
		if !strings.HasPrefix(arg, "-") || arg == "-" || isNumber(arg) {
			parser.positional = append(parser.positional, arg)
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			if b, err := strconv.ParseBool(value); err == nil && isBool[name] {
				parser.boolFlags[name] = b
			} else {
				parser.flags[name] = value
			}
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if !isBool[name] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			parser.flags[name] = raw[i+1]
			i++
			continue
		}
		parser.boolFlags[name] = true
	}

	return parser
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// Flag returns the value of a string flag, or "" if absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or a default if not found.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagInt returns a positive integer flag. It reports ok=false when the
// flag is absent and an error when it is present but not a positive
// integer.
func (p *ArgParser) FlagInt(name string) (n int, ok bool, err error) {
	val := p.Flag(name)
	if val == "" {
		return 0, false, nil
	}
	n, err = ParseIntWithValidation(val, name)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// BoolFlag returns the value of a boolean flag, false if absent.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns positional arguments from index on.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// HasFlag reports whether the flag was given in either form.
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// =============================================================================
// HELPER FUNCTIONS FOR COMMON ARG PATTERNS
// =============================================================================

// ParseIntWithValidation parses a positive integer from s.
func ParseIntWithValidation(s string, fieldName string) (int, error) {
	if s == "" {
		return 0, NewValidationError(fieldName, s, "value is required")
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewValidationError(fieldName, s, "must be a whole number")
	}

	if val <= 0 {
		return 0, NewValidationError(fieldName, s, fmt.Sprintf("must be positive, got %d", val))
	}

	return val, nil
}

// JoinPositionalArgs joins positional arguments from startIndex into one
// string, for multi-word messages and names.
func JoinPositionalArgs(parser *ArgParser, startIndex int) string {
	return strings.Join(parser.PositionalFrom(startIndex), " ")
}
