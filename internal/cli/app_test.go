// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/minigram/internal/backend"
	"github.com/jeranaias/minigram/internal/calls"
	"github.com/jeranaias/minigram/internal/config"
	"github.com/jeranaias/minigram/internal/devserver"
	"github.com/jeranaias/minigram/internal/session"
	"github.com/jeranaias/minigram/internal/storage"
	"github.com/jeranaias/minigram/internal/timeline"
)

const testCode = "000000"

type testApp struct {
	*App
	kv  *storage.MemoryStore
	out *bytes.Buffer
	err *bytes.Buffer
}

func startBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := devserver.New(devserver.Config{JWTSecret: "cli-test", DevCode: testCode}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// newTestApp wires an App the way main does, against ts and an in-memory
// store. The host environment is ignored.
func newTestApp(t *testing.T, ts *httptest.Server, enabled bool) *testApp {
	t.Helper()
	ctx := context.Background()

	kv := storage.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })

	env := map[string]string{"MINI_BACKEND_URL": ts.URL}
	resolver := config.NewResolver(kv, config.WithLookupEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	require.NoError(t, resolver.SetEnabled(ctx, enabled))

	sess, err := session.Open(ctx, kv, nil)
	require.NoError(t, err)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	client := backend.NewClient(u, sess).WithHTTPClient(ts.Client())

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &testApp{
		App: &App{
			Settings: config.Default(),
			Resolver: resolver,
			Session:  sess,
			Client:   client,
			Syncer:   timeline.NewSyncer(client, 0, nil),
			Calls:    calls.NewService(client, sess, nil, nil),
			Out:      out,
			Err:      errOut,
		},
		kv:  kv,
		out: out,
		err: errOut,
	}
}

// run parses argv like main and runs it, resetting captured output.
func (a *testApp) run(t *testing.T, argv ...string) error {
	t.Helper()
	a.out.Reset()
	a.err.Reset()
	cmd, args := ParseArgs(argv)
	return a.Run(context.Background(), cmd, args)
}

// runJSON runs argv with --json and decodes the envelope's data into v.
func (a *testApp) runJSON(t *testing.T, v any, argv ...string) {
	t.Helper()
	require.NoError(t, a.run(t, append(argv, "--json")...))
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(a.out.Bytes(), &env), a.out.String())
	require.True(t, env.Success)
	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v))
	}
}

func (a *testApp) signIn(t *testing.T, phone, name string) string {
	t.Helper()
	require.NoError(t, a.run(t, "login", phone))
	require.NoError(t, a.run(t, "verify", phone, testCode, name))
	user, ok := a.Session.CurrentUser()
	require.True(t, ok)
	return user.ID
}

type fakeReader struct {
	lines []string
}

func (f *fakeReader) ReadInput(string) (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeReader) Close() {}

// =============================================================================
// FEATURE FLAG
// =============================================================================

func TestApp_DisabledBackendRefuses(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, false)

	err := app.run(t, "chats")
	assert.ErrorIs(t, err, ErrBackendDisabled)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	err = app.run(t, "login", "+15550001")
	assert.ErrorIs(t, err, ErrBackendDisabled)

	// status and config work regardless.
	require.NoError(t, app.run(t, "status"))
	assert.Contains(t, app.out.String(), "disabled")

	var cfg BackendConfigData
	app.runJSON(t, &cfg, "config", "enable")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, config.SourcePersisted, cfg.EnabledSource)
	assert.Equal(t, config.SourceEnv, cfg.BaseURLSource)

	require.NoError(t, app.run(t, "login", "+15550001"))
}

func TestApp_ConfigSetURL(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)

	err := app.run(t, "config", "set-url", "not a url")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	// The environment still wins over the persisted value.
	var cfg BackendConfigData
	app.runJSON(t, &cfg, "config", "set-url", "http://127.0.0.1:9")
	assert.Equal(t, ts.URL, cfg.BaseURL)
	assert.Equal(t, config.SourceEnv, cfg.BaseURLSource)

	// Without the override the persisted URL applies.
	persisted := config.NewResolver(app.kv, config.WithLookupEnv(func(string) (string, bool) { return "", false }))
	assert.Equal(t, "http://127.0.0.1:9", persisted.BaseURL(context.Background()).String())

	require.NoError(t, app.run(t, "config", "reset-url"))
	assert.Equal(t, config.DefaultBaseURL, persisted.BaseURL(context.Background()).String())

	err = app.run(t, "config", "bogus")
	assert.ErrorAs(t, err, &ve)
}

// =============================================================================
// AUTH
// =============================================================================

func TestApp_LoginVerifyMeLogout(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)

	require.NoError(t, app.run(t, "login", "+15550001"))
	assert.Contains(t, app.out.String(), "minigram verify +15550001 <code>")
	assert.False(t, app.Session.IsAuthorized())

	require.NoError(t, app.run(t, "verify", "+15550001", testCode, "Alice", "Smith"))
	assert.Contains(t, app.out.String(), "Signed in as Alice Smith")
	assert.True(t, app.Session.IsAuthorized())

	var me map[string]any
	app.runJSON(t, &me, "me")
	assert.Equal(t, "Alice Smith", me["display_name"])
	assert.Equal(t, "+15550001", me["phone"])

	require.NoError(t, app.run(t, "logout"))
	assert.False(t, app.Session.IsAuthorized())
	// Logging out twice is fine.
	require.NoError(t, app.run(t, "logout"))

	err := app.run(t, "me")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestApp_LoginPromptsForCode(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)
	app.NewLineReader = func() (LineReader, error) {
		return &fakeReader{lines: []string{" " + testCode + " "}}, nil
	}

	require.NoError(t, app.run(t, "login", "+15550001", "--name", "Alice"))
	user, ok := app.Session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestApp_WrongCode(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)

	require.NoError(t, app.run(t, "login", "+15550001"))
	err := app.run(t, "verify", "+15550001", "999999")
	require.Error(t, err)
	assert.True(t, backend.IsUnauthorized(err))
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.False(t, app.Session.IsAuthorized())

	var buf bytes.Buffer
	DisplayError(&buf, "verify", err, false)
	assert.Contains(t, buf.String(), "invalid code")
}

func TestApp_BotLogin(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)

	var data SessionData
	app.runJSON(t, &data, "bot", devserver.DefaultBotCode, "helper")
	assert.True(t, data.Authorized)
	require.NotNil(t, data.User)
	assert.Equal(t, "helper", data.User.DisplayName)
	assert.NotContains(t, app.out.String(), "token")
}

func TestApp_MissingArguments(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)

	for _, argv := range [][]string{
		{"login"},
		{"verify", "+1"},
		{"bot"},
		{"messages"},
		{"send", "c1"},
		{"chats", "new"},
		{"call", "join"},
		{"call", "dance"},
		{"nonsense"},
	} {
		err := app.run(t, argv...)
		assert.Equal(t, ExitUsageError, GetExitCode(err), "%v: %v", argv, err)
	}
}

// =============================================================================
// CHATS AND MESSAGES
// =============================================================================

func TestApp_ChatFlow(t *testing.T) {
	ts := startBackend(t)
	alice := newTestApp(t, ts, true)
	bob := newTestApp(t, ts, true)
	alice.signIn(t, "+15550001", "Alice")
	bobID := bob.signIn(t, "+15550002", "Bob")

	require.NoError(t, alice.run(t, "chats"))
	assert.Contains(t, alice.out.String(), "No chats yet")

	var created ChatsData
	alice.runJSON(t, &created, "chats", "new", bobID)
	require.NotNil(t, created.Created)
	require.NotEmpty(t, created.Chats)
	assert.Equal(t, created.Created.ID, created.Chats[0].ID)
	chatID := created.Created.ID

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, alice.run(t, "send", chatID, text))
	}
	require.NoError(t, bob.run(t, "send", chatID, "four"))

	var page MessagesData
	alice.runJSON(t, &page, "messages", chatID)
	require.Len(t, page.Messages, 4)
	assert.Equal(t, "one", page.Messages[0].Text())
	assert.Equal(t, "four", page.Messages[3].Text())

	alice.runJSON(t, &page, "messages", chatID, "--limit", "2")
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "three", page.Messages[0].Text())
	assert.Equal(t, "four", page.Messages[1].Text())

	require.NoError(t, alice.run(t, "messages", chatID, "--plain"))
	assert.Contains(t, alice.out.String(), "you: one")

	err := alice.run(t, "messages", "no-such-chat")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestApp_SendBlankRejectedLocally(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)
	app.signIn(t, "+15550001", "Alice")

	err := app.run(t, "send", "c1", "   ")
	assert.ErrorIs(t, err, timeline.ErrEmptyMessage)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestApp_ChatREPL(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)
	selfID := app.signIn(t, "+15550001", "Alice")

	var created ChatsData
	app.runJSON(t, &created, "chats", "new", selfID)
	chatID := created.Created.ID

	app.NewLineReader = func() (LineReader, error) {
		return &fakeReader{lines: []string{"hello", "", "/help", "second line", "/quit", "never sent"}}, nil
	}
	require.NoError(t, app.run(t, "chat", chatID, "--plain"))
	assert.Contains(t, app.out.String(), "No messages yet")
	assert.Contains(t, app.out.String(), "/refresh")

	var page MessagesData
	app.runJSON(t, &page, "messages", chatID)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "hello", page.Messages[0].Text())
	assert.Equal(t, "second line", page.Messages[1].Text())
}

func TestApp_ChatREPLNeedsReader(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)
	app.signIn(t, "+15550001", "Alice")

	var ttyErr *TTYRequiredError
	assert.ErrorAs(t, app.run(t, "chat", "c1"), &ttyErr)
}

// =============================================================================
// CALLS
// =============================================================================

func TestApp_Calls(t *testing.T) {
	ts := startBackend(t)
	alice := newTestApp(t, ts, true)
	bob := newTestApp(t, ts, true)
	alice.signIn(t, "+15550001", "Alice")
	bob.signIn(t, "+15550002", "Bob")

	var started map[string]any
	alice.runJSON(t, &started, "call", "start")
	callID, _ := started["call_id"].(string)
	require.NotEmpty(t, callID)
	assert.Contains(t, started["media_error"], "coming soon")

	var joined map[string]any
	bob.runJSON(t, &joined, "call", "join", callID)
	assert.Equal(t, callID, joined["call_id"])
	assert.Equal(t, started["room"], joined["room"])

	require.NoError(t, bob.run(t, "call", "join", callID))
	assert.Contains(t, bob.out.String(), "[WARN]")

	err := bob.run(t, "call", "join", "missing")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	require.NoError(t, bob.run(t, "logout"))
	err = bob.run(t, "call", "start")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestApp_StatusJSON(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)
	app.signIn(t, "+15550001", "Alice")

	var status StatusData
	app.runJSON(t, &status, "status")
	assert.True(t, status.Authorized)
	require.NotNil(t, status.User)
	assert.Equal(t, "Alice", status.User.DisplayName)
	assert.Equal(t, ts.URL, status.Backend.BaseURL)
	assert.True(t, status.Backend.Enabled)
}

func TestApp_Version(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, false)

	var v VersionData
	app.runJSON(t, &v, "version")
	assert.Equal(t, Version, v.Version)

	require.NoError(t, app.run(t, "help"))
	assert.Contains(t, app.out.String(), "minigram chats new <user-id>")
}

func TestApp_TUIGates(t *testing.T) {
	ts := startBackend(t)
	app := newTestApp(t, ts, true)

	err := app.run(t)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)

	started := false
	app.StartTUI = func(context.Context) error {
		started = true
		return nil
	}
	assert.ErrorIs(t, app.run(t), ErrNotSignedIn)
	assert.Equal(t, ExitAuthError, GetExitCode(app.run(t)))

	app.signIn(t, "+15550001111", "Ada")
	err = app.run(t)
	if IsTTY() {
		assert.NoError(t, err)
		assert.True(t, started)
	} else {
		var ttyErr *TTYRequiredError
		assert.ErrorAs(t, err, &ttyErr)
		assert.False(t, started)
	}

	assert.Equal(t, ExitUsageError, GetExitCode(app.run(t, "--json")))
}
