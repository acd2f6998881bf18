// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/minigram/internal/model"
	"github.com/jeranaias/minigram/internal/util"
)

// Rows taken by the header, compose line, status line and help line.
const chromeHeight = 4

// resize lays the panes out for a terminal of width x height.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)

	// Pane borders take one cell on each side.
	bodyHeight := max(height-chromeHeight-2, 1)
	listWidth := m.theme.ChatListWidth()

	msgWidth := width - 2
	if listWidth > 0 {
		m.chats.SetSize(listWidth-2, bodyHeight)
		msgWidth = width - listWidth - 2
	} else {
		m.chats.SetSize(width-2, bodyHeight)
	}
	m.viewport.Width = max(msgWidth, 1)
	m.viewport.Height = bodyHeight
	m.input.Width = max(width-4, 1)

	m.ready = true
	m.refreshViewport()
}

// refreshViewport re-renders the active chat's messages and scrolls to the
// newest one.
func (m *Model) refreshViewport() {
	if m.activeID == "" {
		m.viewport.SetContent(m.theme.Empty.Render("Select a chat with enter, or start one with C-n."))
		return
	}
	msgs := m.syncer.View(m.activeID).Messages()
	m.viewport.SetContent(m.renderMessages(msgs))
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages(msgs []model.Message) string {
	if len(msgs) == 0 {
		return m.theme.Empty.Render("No messages yet.")
	}
	bodyWidth := max(m.viewport.Width-2, 10)

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		sender := m.theme.IncomingSender.Render(shortID(msg.SenderID))
		body := m.theme.Incoming
		if msg.IsOutgoing(m.selfID) {
			sender = m.theme.OutgoingSender.Render("you")
			body = m.theme.Outgoing
		}
		stamp := msg.CreatedAt.Local().Format(stampLayout(msg.CreatedAt))
		if msg.IsEdited() {
			stamp += " (edited)"
		}
		b.WriteString(sender + " " + m.theme.Timestamp.Render(stamp) + "\n")
		b.WriteString(body.Width(bodyWidth).Render(msg.Text()) + "\n")
	}
	return b.String()
}

// stampLayout shows the time alone for today's messages.
func stampLayout(t time.Time) string {
	now := time.Now()
	if y, mo, d := t.Local().Date(); y == now.Year() && mo == now.Month() && d == now.Day() {
		return "15:04"
	}
	return "Jan 2 15:04"
}

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sections := []string{
		m.headerView(),
		m.bodyView(),
		m.inputView(),
		m.statusView(),
		m.help.ShortHelpView(m.keys.ShortHelp()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	title := m.theme.HeaderTitle.Render("minigram")
	if m.selfName != "" {
		title += m.theme.HeaderSubtle.Render(" · " + m.selfName)
	}
	if chat, ok := m.syncer.Chats().Find(m.activeID); ok {
		title += m.theme.HeaderSubtle.Render(" › " + chat.DisplayTitle())
	}
	return m.theme.Header.Width(m.width).Render(title)
}

func (m Model) bodyView() string {
	listPane := m.theme.Pane
	msgPane := m.theme.Pane
	if m.focus == focusList {
		listPane = m.theme.PaneFocused
	} else {
		msgPane = m.theme.PaneFocused
	}

	messages := msgPane.Render(m.viewport.View())
	if m.theme.ChatListWidth() == 0 {
		// Narrow terminals show one pane at a time.
		if m.focus == focusList {
			return listPane.Render(m.chats.View())
		}
		return messages
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane.Render(m.chats.View()), messages)
}

func (m Model) inputView() string {
	return m.input.View()
}

func (m Model) statusView() string {
	text := util.TruncateWidth(util.FirstLine(m.status), max(m.width-4, 1))
	switch m.statusLevel {
	case statusOK:
		text = m.theme.StatusOK.Render(text)
	case statusWarning:
		text = m.theme.StatusWarning.Render(text)
	case statusError:
		text = m.theme.StatusError.Render(text)
	}
	if m.loading {
		text = m.spinner.View() + " " + text
	}
	return m.theme.StatusBar.Width(m.width).Render(text)
}

// shortID abbreviates server ids for display.
func shortID(id string) string {
	return util.TruncateWidth(id, 8)
}
