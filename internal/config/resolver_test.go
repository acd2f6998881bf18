// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/minigram/internal/storage"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func newTestResolver(t *testing.T, env map[string]string) (*Resolver, storage.KV) {
	t.Helper()
	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewResolver(store, WithLookupEnv(envMap(env))), store
}

// =============================================================================
// BASE URL
// =============================================================================

func TestResolver_BaseURL_Default(t *testing.T) {
	r, _ := newTestResolver(t, nil)
	ctx := context.Background()

	assert.Equal(t, DefaultBaseURL, r.BaseURL(ctx).String())
	assert.Equal(t, SourceDefault, r.Resolve(ctx).BaseURLSource)
}

func TestResolver_BaseURL_Persisted(t *testing.T) {
	r, _ := newTestResolver(t, nil)
	ctx := context.Background()

	u, _ := url.Parse("https://chat.example.com:9443")
	require.NoError(t, r.SetBaseURL(ctx, u))

	assert.Equal(t, "https://chat.example.com:9443", r.BaseURL(ctx).String())
	assert.Equal(t, SourcePersisted, r.Resolve(ctx).BaseURLSource)
}

func TestResolver_BaseURL_EnvWins(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{EnvBaseURL: "http://localhost:8080"})
	ctx := context.Background()

	u, _ := url.Parse("https://chat.example.com")
	require.NoError(t, r.SetBaseURL(ctx, u))

	assert.Equal(t, "http://localhost:8080", r.BaseURL(ctx).String())
	assert.Equal(t, SourceEnv, r.Resolve(ctx).BaseURLSource)
}

func TestResolver_BaseURL_UnparseableSkipped(t *testing.T) {
	r, store := newTestResolver(t, map[string]string{EnvBaseURL: "::not a url"})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyBaseURL, []byte("also not a url")))
	assert.Equal(t, DefaultBaseURL, r.BaseURL(ctx).String())

	require.NoError(t, store.Set(ctx, KeyBaseURL, []byte("http://persisted:1")))
	assert.Equal(t, "http://persisted:1", r.BaseURL(ctx).String())
}

func TestResolver_BaseURL_EmptyEnvSkipped(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{EnvBaseURL: ""})
	assert.Equal(t, DefaultBaseURL, r.BaseURL(context.Background()).String())
}

func TestResolver_ResetBaseURL(t *testing.T) {
	r, _ := newTestResolver(t, nil)
	ctx := context.Background()

	u, _ := url.Parse("http://other:1")
	require.NoError(t, r.SetBaseURL(ctx, u))
	require.NoError(t, r.ResetBaseURL(ctx))
	require.NoError(t, r.ResetBaseURL(ctx))

	assert.Equal(t, DefaultBaseURL, r.BaseURL(ctx).String())
}

func TestResolver_SetBaseURL_RejectsRelative(t *testing.T) {
	r, _ := newTestResolver(t, nil)
	err := r.SetBaseURL(context.Background(), &url.URL{Path: "relative/path"})
	assert.Error(t, err)
}

// =============================================================================
// ENABLED FLAG
// =============================================================================

func TestResolver_IsEnabled(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		persisted *bool
		want      bool
		source    Source
	}{
		{name: "default disabled", want: false, source: SourceDefault},
		{name: "persisted true", persisted: boolPtr(true), want: true, source: SourcePersisted},
		{name: "persisted false", persisted: boolPtr(false), want: false, source: SourcePersisted},
		{name: "env zero disables", env: map[string]string{EnvMode: "0"}, persisted: boolPtr(true), want: false, source: SourceEnv},
		{name: "env one enables", env: map[string]string{EnvMode: "1"}, persisted: boolPtr(false), want: true, source: SourceEnv},
		{name: "env any value enables", env: map[string]string{EnvMode: "staging"}, want: true, source: SourceEnv},
		{name: "env empty enables", env: map[string]string{EnvMode: ""}, want: true, source: SourceEnv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(t, tt.env)
			ctx := context.Background()
			if tt.persisted != nil {
				require.NoError(t, r.SetEnabled(ctx, *tt.persisted))
			}

			assert.Equal(t, tt.want, r.IsEnabled(ctx))
			assert.Equal(t, tt.source, r.Resolve(ctx).EnabledSource)
		})
	}
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"http://62.60.148.13:8080", true},
		{"https://example.com/api", true},
		{"  https://example.com  ", true},
		{"example.com", false},
		{"/v1", false},
		{"", false},
		{"http://[::1", false},
	}
	for _, tt := range tests {
		_, ok := ParseBaseURL(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseBaseURL(%q)", tt.in)
	}
}

func boolPtr(b bool) *bool { return &b }
