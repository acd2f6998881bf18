// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/minigram/internal/backend"
	"github.com/jeranaias/minigram/internal/model"
	"github.com/jeranaias/minigram/internal/timeline"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// =============================================================================
// FAKES
// =============================================================================

// fakeAPI is an in-memory backend. Messages are returned newest first like
// the real server.
type fakeAPI struct {
	mu       sync.Mutex
	chats    []model.Chat
	messages map[string][]model.Message
	sendErr  error
	seq      int
}

func newFakeAPI() *fakeAPI {
	title := "Team"
	return &fakeAPI{
		chats: []model.Chat{
			{ID: "c1", Kind: model.ChatKindDirect},
			{ID: "c2", Kind: model.ChatKindGroup, Title: &title},
		},
		messages: map[string][]model.Message{
			"c1": {
				textMsg("m2", "c1", "u2", "second", time.Minute),
				textMsg("m1", "c1", "me", "first", 0),
			},
			"c2": {
				textMsg("m3", "c2", "u3", "group hello", 0),
			},
		},
	}
}

func textMsg(id, chatID, sender, body string, offset time.Duration) model.Message {
	return model.Message{ID: id, ChatID: chatID, SenderID: sender, Body: &body, CreatedAt: base.Add(offset)}
}

func (f *fakeAPI) ListChats(context.Context) ([]model.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Chat(nil), f.chats...), nil
}

func (f *fakeAPI) CreateDirectChat(_ context.Context, userID string) (model.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat := model.Chat{ID: "chat-" + userID, Kind: model.ChatKindDirect}
	f.chats = append([]model.Chat{chat}, f.chats...)
	return chat, nil
}

func (f *fakeAPI) ListMessages(_ context.Context, chatID string, limit int) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs, ok := f.messages[chatID]
	if !ok {
		msg := "chat not found"
		return nil, &backend.HTTPStatusError{StatusCode: 404, ServerMessage: &msg}
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return append([]model.Message(nil), msgs...), nil
}

func (f *fakeAPI) SendMessage(_ context.Context, chatID, body string) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return model.Message{}, f.sendErr
	}
	f.seq++
	msg := textMsg(fmt.Sprintf("s%d", f.seq), chatID, "me", body, time.Hour+time.Duration(f.seq)*time.Second)
	f.messages[chatID] = append([]model.Message{msg}, f.messages[chatID]...)
	return msg, nil
}

type fakeSession struct {
	user model.User
}

func (s fakeSession) CurrentUser() (model.User, bool) {
	return s.user, s.user.ID != ""
}

type fakeCalls struct {
	joined []string
}

func (c *fakeCalls) Start(_ context.Context, chatID string) (model.CallJoin, error) {
	return model.CallJoin{CallID: "call-" + chatID, Room: "room-" + chatID, Token: "t", LiveKitURL: "ws://media"}, nil
}

func (c *fakeCalls) Join(_ context.Context, callID string) (model.CallJoin, error) {
	if callID == "missing" {
		msg := "call not found"
		return model.CallJoin{}, &backend.HTTPStatusError{StatusCode: 404, ServerMessage: &msg}
	}
	c.joined = append(c.joined, callID)
	return model.CallJoin{CallID: callID, Room: "room-" + callID, Token: "t", LiveKitURL: "ws://media"}, nil
}

func (c *fakeCalls) Enter(context.Context, model.CallJoin) error {
	return errors.New("calls are coming soon")
}

// =============================================================================
// HELPERS
// =============================================================================

type harness struct {
	api   *fakeAPI
	calls *fakeCalls
	sync  *timeline.Syncer
	m     Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := newFakeAPI()
	calls := &fakeCalls{}
	syncer := timeline.NewSyncer(api, 50, nil)
	m := New(context.Background(), Options{
		Syncer:  syncer,
		Session: fakeSession{user: model.User{ID: "me", Phone: "+1555", DisplayName: "Ada"}},
		Calls:   calls,
		Theme:   "dark",
	})
	h := &harness{api: api, calls: calls, sync: syncer, m: m}
	h.update(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// drain runs cmd and returns the application messages it produces.
// Timer-driven commands (cursor blink, spinner) are dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case ChatsLoadedMsg, MessagesLoadedMsg, MessageSentMsg, ChatCreatedMsg, CallReadyMsg, tea.QuitMsg:
		return []tea.Msg{msg}
	}
	return nil
}

// update feeds msg to the model and then every message its commands
// produce, until nothing is left.
func (h *harness) update(t *testing.T, msg tea.Msg) []tea.Msg {
	t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return h.settle(t, cmd)
}

func (h *harness) settle(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 10, "commands did not settle")
		var cmds []tea.Cmd
		for _, msg := range drain(cmd) {
			seen = append(seen, msg)
			if _, quit := msg.(tea.QuitMsg); quit {
				continue
			}
			next, c := h.m.Update(msg)
			h.m = next.(Model)
			cmds = append(cmds, c)
		}
		cmd = tea.Batch(cmds...)
	}
	return seen
}

func (h *harness) key(t *testing.T, k tea.KeyType) []tea.Msg {
	t.Helper()
	return h.update(t, tea.KeyMsg{Type: k})
}

func (h *harness) typeText(t *testing.T, s string) {
	t.Helper()
	h.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	h.settle(t, h.m.Init())
}

func (h *harness) activeTexts() []string {
	var out []string
	for _, msg := range h.sync.View(h.m.ActiveChatID()).Messages() {
		out = append(out, msg.Text())
	}
	return out
}

// =============================================================================
// TESTS
// =============================================================================

func TestModel_InitOpensFirstChatOldestFirst(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	assert.Equal(t, "c1", h.m.ActiveChatID())
	assert.Equal(t, []string{"first", "second"}, h.activeTexts())

	view := h.m.viewport.View()
	first, second := strings.Index(view, "first"), strings.Index(view, "second")
	require.True(t, first >= 0 && second >= 0, view)
	assert.Less(t, first, second)
	assert.Contains(t, view, "you")
}

func TestModel_ViewShowsChrome(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	view := h.m.View()
	assert.Contains(t, view, "minigram")
	assert.Contains(t, view, "Ada")
	assert.Contains(t, view, "Chats")
	assert.Contains(t, view, "Team")
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := New(context.Background(), Options{Syncer: timeline.NewSyncer(newFakeAPI(), 0, nil)})
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_SendAppendsAtEnd(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.typeText(t, "hello there")
	h.key(t, tea.KeyEnter)

	assert.Equal(t, []string{"first", "second", "hello there"}, h.activeTexts())
	assert.Empty(t, h.m.input.Value())
	assert.Equal(t, "Sent", h.m.Status())
}

func TestModel_BlankSendIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.typeText(t, "   ")
	msgs := h.key(t, tea.KeyEnter)

	assert.Empty(t, msgs)
	assert.Len(t, h.activeTexts(), 2)
}

func TestModel_SendFailureKeepsText(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	msg := "not a member"
	h.api.sendErr = &backend.HTTPStatusError{StatusCode: 403, ServerMessage: &msg}

	h.typeText(t, "oops")
	h.key(t, tea.KeyEnter)

	assert.Equal(t, "oops", h.m.input.Value())
	assert.Contains(t, h.m.Status(), "not a member (HTTP 403)")
	assert.Len(t, h.activeTexts(), 2)
}

func TestModel_ListNavigationOpensChat(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.key(t, tea.KeyTab)
	assert.Equal(t, focusList, h.m.focus)

	h.typeText(t, "j")
	h.key(t, tea.KeyEnter)

	assert.Equal(t, "c2", h.m.ActiveChatID())
	assert.Equal(t, focusInput, h.m.focus)
	assert.Equal(t, []string{"group hello"}, h.activeTexts())
}

func TestModel_NewChatGoesToHead(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.key(t, tea.KeyCtrlN)
	assert.Equal(t, modeNewChat, h.m.mode)
	h.typeText(t, "u9")
	h.key(t, tea.KeyEnter)

	assert.Equal(t, modeCompose, h.m.mode)
	assert.Equal(t, "chat-u9", h.m.ActiveChatID())
	items := h.m.chats.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "chat-u9", items[0].(chatItem).chat.ID)
	assert.Equal(t, "chat-u9", h.sync.Chats().Chats()[0].ID)
}

func TestModel_EscCancelsPrompt(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.key(t, tea.KeyCtrlN)
	h.typeText(t, "u9")
	h.key(t, tea.KeyEsc)

	assert.Equal(t, modeCompose, h.m.mode)
	assert.Empty(t, h.m.input.Value())
	assert.Equal(t, composePlaceholder, h.m.input.Placeholder)
	assert.Equal(t, 2, h.sync.Chats().Len())
}

func TestModel_StartCall(t *testing.T) {
	h := newHarness(t)

	h.key(t, tea.KeyCtrlT)
	assert.Equal(t, "Open a chat first", h.m.Status())

	h.start(t)
	h.key(t, tea.KeyCtrlT)
	assert.Contains(t, h.m.Status(), "started")
	assert.Contains(t, h.m.Status(), "room-c1")
	assert.Contains(t, h.m.Status(), "coming soon")
}

func TestModel_JoinCall(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.key(t, tea.KeyCtrlG)
	h.typeText(t, "call-7")
	h.key(t, tea.KeyEnter)
	assert.Equal(t, []string{"call-7"}, h.calls.joined)
	assert.Contains(t, h.m.Status(), "joined")

	h.key(t, tea.KeyCtrlG)
	h.typeText(t, "missing")
	h.key(t, tea.KeyEnter)
	assert.Contains(t, h.m.Status(), "call not found (HTTP 404)")
}

func TestModel_NoCallsService(t *testing.T) {
	m := New(context.Background(), Options{Syncer: timeline.NewSyncer(newFakeAPI(), 0, nil)})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Nil(t, cmd)
	assert.Equal(t, "Calls are not available", next.(Model).Status())
}

func TestModel_ThemeChange(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.Theme().IsDark)

	h.update(t, ThemeChangedMsg{Mode: "light"})
	assert.False(t, h.m.Theme().IsDark)
	assert.Equal(t, 120, h.m.Theme().Width)
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)
	msgs := h.key(t, tea.KeyCtrlC)
	require.Len(t, msgs, 1)
	assert.IsType(t, tea.QuitMsg{}, msgs[0])
}

func TestModel_LoadErrorShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.update(t, MessagesLoadedMsg{ChatID: "gone", Err: &backend.HTTPStatusError{StatusCode: 500}})
	assert.Contains(t, h.m.Status(), "Could not load messages")
}
