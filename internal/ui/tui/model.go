// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/backend"
	"github.com/jeranaias/minigram/internal/model"
	"github.com/jeranaias/minigram/internal/timeline"
	"github.com/jeranaias/minigram/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Session reports the signed-in user.
type Session interface {
	CurrentUser() (model.User, bool)
}

// Calls is the subset of calls.Service the UI drives.
type Calls interface {
	Start(ctx context.Context, chatID string) (model.CallJoin, error)
	Join(ctx context.Context, callID string) (model.CallJoin, error)
	Enter(ctx context.Context, join model.CallJoin) error
}

// Options configures the UI.
type Options struct {
	Syncer  *timeline.Syncer
	Session Session
	Calls   Calls
	// Theme is the initial theme mode.
	Theme string
	// SettingsPath is watched for theme changes. Empty disables watching.
	SettingsPath string
	Logger       *zap.Logger
}

// =============================================================================
// STATE
// =============================================================================

type focusArea int

const (
	focusList focusArea = iota
	focusInput
)

// inputMode selects what the compose line submits to.
type inputMode int

const (
	modeCompose inputMode = iota
	modeNewChat
	modeJoinCall
)

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusOK
	statusWarning
	statusError
)

const composePlaceholder = "Write a message..."

// chatItem adapts a chat to list.DefaultItem.
type chatItem struct {
	chat model.Chat
}

func (i chatItem) Title() string       { return i.chat.DisplayTitle() }
func (i chatItem) Description() string { return string(i.chat.Kind) + " · " + shortID(i.chat.ID) }
func (i chatItem) FilterValue() string { return i.chat.DisplayTitle() }

// Model is the Bubble Tea model of the full-screen client.
type Model struct {
	ctx     context.Context
	syncer  *timeline.Syncer
	session Session
	calls   Calls
	logger  *zap.Logger

	theme    *styles.Theme
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	chats    list.Model
	viewport viewport.Model
	input    textinput.Model

	focus    focusArea
	mode     inputMode
	activeID string
	selfID   string
	selfName string

	loading     bool
	status      string
	statusLevel statusLevel

	width  int
	height int
	ready  bool
}

// New creates the model. ctx bounds every network call it makes.
func New(ctx context.Context, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Chats"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("chat", "chats")
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = composePlaceholder
	ti.Prompt = "> "
	ti.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		syncer:   opts.Syncer,
		session:  opts.Session,
		calls:    opts.Calls,
		logger:   logger,
		theme:    styles.NewTheme(opts.Theme),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		chats:    l,
		viewport: viewport.New(0, 0),
		input:    ti,
		focus:    focusList,
	}
	if opts.Session != nil {
		if user, ok := opts.Session.CurrentUser(); ok {
			m.selfID = user.ID
			m.selfName = user.DisplayName
		}
	}
	m.applyTheme()
	return m
}

// applyTheme pushes the current theme into the bubbles components.
func (m *Model) applyTheme() {
	d := list.NewDefaultDelegate()
	d.Styles.NormalTitle = m.theme.ChatItem
	d.Styles.NormalDesc = m.theme.ChatMeta
	d.Styles.SelectedTitle = m.theme.ChatActive
	d.Styles.SelectedDesc = m.theme.ChatMeta
	m.chats.SetDelegate(d)
	m.chats.Styles.Title = m.theme.HeaderTitle

	m.input.PromptStyle = m.theme.InputPrompt
	m.input.PlaceholderStyle = m.theme.InputPlaceholder
	m.spinner.Style = m.theme.StatusWarning
	m.help.Styles.ShortKey = m.theme.Help.Bold(true)
	m.help.Styles.ShortDesc = m.theme.Help
	m.help.Styles.ShortSeparator = m.theme.Help
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the first chat list load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshChats(), m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChatsLoadedMsg:
		return m.handleChatsLoaded(msg)

	case MessagesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.setError("load messages", msg.Err)
			return m, nil
		}
		if msg.ChatID == m.activeID {
			m.refreshViewport()
		}
		return m, nil

	case MessageSentMsg:
		if msg.Err != nil {
			m.setError("send", msg.Err)
			if m.input.Value() == "" {
				m.input.SetValue(msg.Text)
			}
			return m, nil
		}
		if msg.ChatID == m.activeID {
			m.refreshViewport()
		}
		m.setStatus(statusOK, "Sent")
		return m, nil

	case ChatCreatedMsg:
		return m.handleChatCreated(msg)

	case CallReadyMsg:
		m.handleCallReady(msg)
		return m, nil

	case ThemeChangedMsg:
		if styles.NormalizeMode(msg.Mode) != m.theme.Mode {
			m.theme = styles.NewTheme(msg.Mode)
			m.theme.SetSize(m.width, m.height)
			m.applyTheme()
			m.refreshViewport()
			m.logger.Debug("theme changed", zap.String("mode", m.theme.Mode))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.mode != modeCompose {
			m.resetCompose()
			m.setStatus(statusInfo, "")
			return m, nil
		}
		m.setFocus(focusList)
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusList {
			cmd := m.setFocus(focusInput)
			return m, cmd
		}
		m.setFocus(focusList)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds := []tea.Cmd{m.refreshChats(), m.spinner.Tick}
		if m.activeID != "" {
			cmds = append(cmds, m.loadMessages(m.activeID))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.NewChat):
		cmd := m.prompt(modeNewChat, "User id for a new direct chat")
		return m, cmd

	case key.Matches(msg, m.keys.JoinCall):
		if m.calls == nil {
			m.setStatus(statusWarning, "Calls are not available")
			return m, nil
		}
		cmd := m.prompt(modeJoinCall, "Call id to join")
		return m, cmd

	case key.Matches(msg, m.keys.StartCall):
		if m.calls == nil {
			m.setStatus(statusWarning, "Calls are not available")
			return m, nil
		}
		if m.activeID == "" {
			m.setStatus(statusWarning, "Open a chat first")
			return m, nil
		}
		m.setStatus(statusInfo, "Starting call...")
		return m, m.startCall(m.activeID)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusList {
		if key.Matches(msg, m.keys.Open) {
			cmd := m.openSelected()
			return m, cmd
		}
		var cmd tea.Cmd
		m.chats, cmd = m.chats.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Submit) {
		cmd := m.submit()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// setFocus moves keyboard focus and returns the cursor blink command when
// the compose line gains it.
func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	if f == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

// prompt switches the compose line to collect an id.
func (m *Model) prompt(mode inputMode, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.setStatus(statusInfo, placeholder+" (esc to cancel)")
	return m.setFocus(focusInput)
}

func (m *Model) resetCompose() {
	m.mode = modeCompose
	m.input.Reset()
	m.input.Placeholder = composePlaceholder
}

// submit acts on the compose line according to the current mode.
func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	switch m.mode {
	case modeNewChat:
		userID := strings.TrimSpace(text)
		if userID == "" {
			return nil
		}
		m.resetCompose()
		m.setStatus(statusInfo, "Creating chat...")
		return m.createChat(userID)

	case modeJoinCall:
		callID := strings.TrimSpace(text)
		if callID == "" {
			return nil
		}
		m.resetCompose()
		m.setStatus(statusInfo, "Joining call...")
		return m.joinCall(callID)
	}

	if m.activeID == "" {
		m.setStatus(statusWarning, "Open a chat first")
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.input.Reset()
	m.setStatus(statusInfo, "Sending...")
	return m.sendMessage(m.activeID, text)
}

// openSelected makes the highlighted chat active and loads its messages.
func (m *Model) openSelected() tea.Cmd {
	item, ok := m.chats.SelectedItem().(chatItem)
	if !ok {
		return nil
	}
	m.activeID = item.chat.ID
	m.loading = true
	m.refreshViewport()
	return tea.Batch(m.loadMessages(item.chat.ID), m.setFocus(focusInput), m.spinner.Tick)
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m Model) handleChatsLoaded(msg ChatsLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.Err != nil {
		m.setError("load chats", msg.Err)
		return m, nil
	}
	cmd := m.syncChatItems()

	if m.activeID == "" && m.syncer.Chats().Len() > 0 {
		m.chats.Select(0)
		open := m.openSelected()
		return m, tea.Batch(cmd, open)
	}
	m.selectActive()
	return m, cmd
}

func (m Model) handleChatCreated(msg ChatCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setError("create chat", msg.Err)
		return m, nil
	}
	cmd := m.syncChatItems()
	m.chats.Select(0)
	m.setStatus(statusOK, "Chat created")
	open := m.openSelected()
	return m, tea.Batch(cmd, open)
}

func (m *Model) handleCallReady(msg CallReadyMsg) {
	verb := "started"
	if msg.Joined {
		verb = "joined"
	}
	if msg.Err != nil {
		m.setError("call", msg.Err)
		return
	}
	if msg.MediaErr != nil {
		m.logger.Info("call media unavailable",
			zap.String("call_id", msg.Join.CallID), zap.Error(msg.MediaErr))
		m.setStatus(statusWarning, fmt.Sprintf("Call %s %s (room %s). %v",
			shortID(msg.Join.CallID), verb, msg.Join.Room, msg.MediaErr))
		return
	}
	m.setStatus(statusOK, fmt.Sprintf("Call %s %s (room %s)", shortID(msg.Join.CallID), verb, msg.Join.Room))
}

// syncChatItems copies the syncer's chat list into the list component.
func (m *Model) syncChatItems() tea.Cmd {
	chats := m.syncer.Chats().Chats()
	items := make([]list.Item, len(chats))
	for i, c := range chats {
		items[i] = chatItem{chat: c}
	}
	return m.chats.SetItems(items)
}

// selectActive moves the list cursor back onto the active chat.
func (m *Model) selectActive() {
	for i, item := range m.chats.Items() {
		if ci, ok := item.(chatItem); ok && ci.chat.ID == m.activeID {
			m.chats.Select(i)
			return
		}
	}
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.statusLevel = level
	m.status = text
}

func (m *Model) setError(action string, err error) {
	m.logger.Warn("tui action failed", zap.String("action", action), zap.Error(err))
	m.setStatus(statusError, fmt.Sprintf("Could not %s: %s", action, describeError(err)))
}

// describeError prefers the server's own message for HTTP failures.
func describeError(err error) string {
	var statusErr *backend.HTTPStatusError
	if errors.As(err, &statusErr) {
		if msg, ok := statusErr.Message(); ok {
			return fmt.Sprintf("%s (HTTP %d)", msg, statusErr.StatusCode)
		}
	}
	return err.Error()
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) refreshChats() tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		chats, err := s.RefreshChats(ctx)
		return ChatsLoadedMsg{Chats: chats, Err: err}
	}
}

func (m Model) loadMessages(chatID string) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		msgs, err := s.LoadMessages(ctx, chatID)
		return MessagesLoadedMsg{ChatID: chatID, Messages: msgs, Err: err}
	}
}

func (m Model) sendMessage(chatID, text string) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		msg, err := s.Send(ctx, chatID, text)
		return MessageSentMsg{ChatID: chatID, Text: text, Message: msg, Err: err}
	}
}

func (m Model) createChat(userID string) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		chat, err := s.CreateDirectChat(ctx, userID)
		return ChatCreatedMsg{Chat: chat, Err: err}
	}
}

func (m Model) startCall(chatID string) tea.Cmd {
	ctx, c := m.ctx, m.calls
	return func() tea.Msg {
		join, err := c.Start(ctx, chatID)
		if err != nil {
			return CallReadyMsg{Err: err}
		}
		return CallReadyMsg{Join: join, MediaErr: c.Enter(ctx, join)}
	}
}

func (m Model) joinCall(callID string) tea.Cmd {
	ctx, c := m.ctx, m.calls
	return func() tea.Msg {
		join, err := c.Join(ctx, callID)
		if err != nil {
			return CallReadyMsg{Joined: true, Err: err}
		}
		return CallReadyMsg{Join: join, Joined: true, MediaErr: c.Enter(ctx, join)}
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveChatID returns the open chat, or "".
func (m Model) ActiveChatID() string { return m.activeID }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Theme returns the current theme.
func (m Model) Theme() *styles.Theme { return m.theme }
