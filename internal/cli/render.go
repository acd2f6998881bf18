// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Human-readable rendering of chats, messages and calls.

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/minigram/internal/model"
	"github.com/jeranaias/minigram/internal/util"
)

const (
	idColumnWidth    = 12
	kindColumnWidth  = 8
	titleColumnWidth = 32
	timeLayout       = "2006-01-02 15:04"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders message bodies with glamour. It is built on
// first use; a renderer that fails to build leaves bodies as plain text.
type markdownRenderer struct {
	theme string
	width int

	once sync.Once
	r    *glamour.TermRenderer
}

func newMarkdownRenderer(theme string, width int) *markdownRenderer {
	return &markdownRenderer{theme: theme, width: width}
}

func (m *markdownRenderer) Render(text string) string {
	m.once.Do(func() {
		style := glamour.WithAutoStyle()
		if m.theme == "dark" || m.theme == "light" {
			style = glamour.WithStandardStyle(m.theme)
		}
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(m.width))
		if err == nil {
			m.r = r
		}
	})
	if m.r == nil {
		return text
	}
	out, err := m.r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// =============================================================================
// TABLES AND LINES
// =============================================================================

// shortID trims an id for display; the full id is in --json output.
func shortID(id string) string {
	return util.TruncateWidth(id, idColumnWidth)
}

func cell(s string, width int) string {
	return util.PadWidth(util.TruncateWidth(s, width), width)
}

// writeChatTable prints chats in the given order.
func writeChatTable(w io.Writer, chats []model.Chat) {
	if len(chats) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No chats yet. Start one with 'minigram chats new <user-id>'."))
		return
	}
	fmt.Fprintln(w, TitleStyle.Render(cell("ID", idColumnWidth)+"  "+cell("KIND", kindColumnWidth)+"  TITLE"))
	for _, c := range chats {
		created := ""
		if c.CreatedAt != nil {
			created = "  " + DimStyle.Render(formatTime(*c.CreatedAt))
		}
		fmt.Fprintf(w, "%s  %s  %s%s\n",
			DimStyle.Render(cell(c.ID, idColumnWidth)),
			cell(string(c.Kind), kindColumnWidth),
			cell(c.DisplayTitle(), titleColumnWidth),
			created)
	}
}

// messageRenderer formats messages relative to the local user.
type messageRenderer struct {
	selfID   string
	markdown *markdownRenderer // nil means plain text
}

func (r messageRenderer) format(m model.Message) string {
	who := IncomingStyle.Render(shortID(m.SenderID))
	if m.IsOutgoing(r.selfID) {
		who = OutgoingStyle.Render("you")
	}

	stamp := formatTime(m.CreatedAt)
	if m.IsEdited() {
		stamp += " (edited)"
	}

	text := m.Text()
	if r.markdown != nil && m.Body != nil {
		text = r.markdown.Render(text)
	}
	if strings.Contains(text, "\n") {
		return fmt.Sprintf("%s %s\n%s", DimStyle.Render("["+stamp+"]"), who, text)
	}
	return fmt.Sprintf("%s %s: %s", DimStyle.Render("["+stamp+"]"), who, text)
}

func (r messageRenderer) writeAll(w io.Writer, msgs []model.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No messages yet."))
		return
	}
	for _, m := range msgs {
		fmt.Fprintln(w, r.format(m))
	}
}

func writeUser(w io.Writer, u model.User) {
	fmt.Fprintln(w, renderKV("Name", u.DisplayName))
	fmt.Fprintln(w, renderKV("User ID", u.ID))
	if u.Phone != "" {
		fmt.Fprintln(w, renderKV("Phone", u.Phone))
	} else {
		fmt.Fprintln(w, renderKV("Phone", "(bot)"))
	}
}

func writeCallJoin(w io.Writer, j model.CallJoin) {
	fmt.Fprintln(w, renderKV("Call ID", j.CallID))
	fmt.Fprintln(w, renderKV("Room", j.Room))
	fmt.Fprintln(w, renderKV("Media URL", j.LiveKitURL))
	fmt.Fprintln(w, renderKV("Token", util.TruncateWidth(j.Token, 24)))
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}
