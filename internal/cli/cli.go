// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for minigram.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdUnknown Command = iota
	CmdHelp
	CmdVersion
	CmdTUI
	CmdLogin
	CmdVerify
	CmdBot
	CmdLogout
	CmdMe
	CmdStatus
	CmdChats
	CmdMessages
	CmdSend
	CmdChat
	CmdCall
	CmdConfig
)

var commandNames = map[string]Command{
	"help":      CmdHelp,
	"-h":        CmdHelp,
	"--help":    CmdHelp,
	"version":   CmdVersion,
	"--version": CmdVersion,
	"tui":       CmdTUI,
	"login":     CmdLogin,
	"verify":    CmdVerify,
	"bot":       CmdBot,
	"logout":    CmdLogout,
	"me":        CmdMe,
	"whoami":    CmdMe,
	"status":    CmdStatus,
	"s":         CmdStatus,
	"chats":     CmdChats,
	"messages":  CmdMessages,
	"msgs":      CmdMessages,
	"send":      CmdSend,
	"chat":      CmdChat,
	"call":      CmdCall,
	"config":    CmdConfig,
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool // Output in JSON format
	Plain   bool // Print message bodies verbatim

	// Name is the command word as typed.
	Name string

	// Raw holds the arguments after the command word, global flags removed.
	Raw []string
}

const usageText = `minigram - terminal client for the minigram messaging backend

Usage:
  minigram                               Start TUI (default)
  minigram login <phone> [--name NAME]   Request a login code
  minigram verify <phone> <code> [name]  Complete phone login
  minigram bot <code> [name]             Complete bot login
  minigram logout                        Forget the stored session
  minigram me                            Show the signed-in profile
  minigram status, s                     Show backend and session state
  minigram chats                         List chats (server order)
  minigram chats new <user-id>           Open a direct chat
  minigram messages <chat-id> [--limit N]
                                         Show messages, oldest first
  minigram send <chat-id> <text...>      Send a text message
  minigram chat <chat-id>                Interactive chat
  minigram call start [chat-id]          Start a call
  minigram call join <call-id>           Join a call
  minigram config show                   Show backend configuration
  minigram config set-url <url>          Persist a backend URL
  minigram config reset-url              Drop the persisted URL
  minigram config enable|disable         Toggle the backend
  minigram tui                           Full-screen interface

Global Flags:
  --json          Output in JSON format
  -q, --quiet     Minimal output
  -v, --verbose   Debug logging
  --plain         Do not render markdown in message bodies

Environment:
  MINI_BACKEND_URL    Backend base URL (overrides the persisted value)
  MINI_BACKEND_MODE   "0" disables the backend, anything else enables it

Examples:
  minigram config enable
  minigram login +15550001 --name Alice
  minigram chats new 6f1c...
  minigram messages 9a2b... --limit 20
  minigram send 9a2b... "hello there"

Version: %s
`

// PrintUsage writes the usage/help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "minigram version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name) and returns the
// command and its arguments. No arguments selects the TUI.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	parsed.Name = strings.ToLower(remaining[0])
	parsed.Raw = remaining[1:]

	cmd, ok := commandNames[parsed.Name]
	if !ok {
		return CmdUnknown, parsed
	}
	return cmd, parsed
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	remaining := make([]string, 0, len(args))
	var parsed Args

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--plain":
			parsed.Plain = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsed
}
