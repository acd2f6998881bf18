// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/storage"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is used when neither the environment nor a persisted
	// override supplies a usable URL.
	DefaultBaseURL = "http://62.60.148.13:8080"

	// EnvBaseURL overrides the backend base URL for this process.
	EnvBaseURL = "MINI_BACKEND_URL"
	// EnvMode overrides the enabled flag. "0" disables, anything else enables.
	EnvMode = "MINI_BACKEND_MODE"

	// Keys in the durable store.
	KeyBaseURL = "mini_backend_base_url"
	KeyEnabled = "mini_backend_enabled"
)

// Source names where a resolved value came from.
type Source string

const (
	SourceEnv       Source = "env"
	SourcePersisted Source = "persisted"
	SourceDefault   Source = "default"
)

// Resolution is a snapshot of both resolved values with their sources.
type Resolution struct {
	BaseURL       *url.URL
	BaseURLSource Source
	Enabled       bool
	EnabledSource Source
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver answers where the backend lives and whether it is enabled.
// It holds no cached state, so every call observes the current
// environment and store.
type Resolver struct {
	store     storage.KV
	lookupEnv func(string) (string, bool)
	logger    *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) ResolverOption {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

// WithResolverLogger sets the logger used for skipped overrides.
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store storage.KV, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:     store,
		lookupEnv: os.LookupEnv,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseURL returns the backend base URL. It never fails: unusable overrides
// fall through to the next source.
func (r *Resolver) BaseURL(ctx context.Context) *url.URL {
	u, _ := r.resolveBaseURL(ctx)
	return u
}

// IsEnabled reports whether the backend integration is switched on.
func (r *Resolver) IsEnabled(ctx context.Context) bool {
	enabled, _ := r.resolveEnabled(ctx)
	return enabled
}

// Resolve returns both values together with their sources.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	res := Resolution{}
	res.BaseURL, res.BaseURLSource = r.resolveBaseURL(ctx)
	res.Enabled, res.EnabledSource = r.resolveEnabled(ctx)
	return res
}

// SetBaseURL persists a base URL override.
func (r *Resolver) SetBaseURL(ctx context.Context, u *url.URL) error {
	if _, ok := ParseBaseURL(u.String()); !ok {
		return fmt.Errorf("base URL %q must be absolute with scheme and host", u.String())
	}
	if err := r.store.Set(ctx, KeyBaseURL, []byte(u.String())); err != nil {
		return fmt.Errorf("persist base URL: %w", err)
	}
	return nil
}

// ResetBaseURL removes the persisted override.
func (r *Resolver) ResetBaseURL(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeyBaseURL); err != nil {
		return fmt.Errorf("reset base URL: %w", err)
	}
	return nil
}

// SetEnabled persists the enabled flag.
func (r *Resolver) SetEnabled(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := r.store.Set(ctx, KeyEnabled, []byte(v)); err != nil {
		return fmt.Errorf("persist enabled flag: %w", err)
	}
	return nil
}

func (r *Resolver) resolveBaseURL(ctx context.Context) (*url.URL, Source) {
	if raw, ok := r.lookupEnv(EnvBaseURL); ok {
		if u, ok := ParseBaseURL(raw); ok {
			return u, SourceEnv
		}
		r.logger.Debug("ignoring unusable base URL override", zap.String("source", string(SourceEnv)))
	}

	raw, ok, err := r.store.Get(ctx, KeyBaseURL)
	if err != nil {
		r.logger.Warn("read persisted base URL", zap.Error(err))
	} else if ok {
		if u, ok := ParseBaseURL(string(raw)); ok {
			return u, SourcePersisted
		}
		r.logger.Debug("ignoring unusable base URL override", zap.String("source", string(SourcePersisted)))
	}

	u, _ := url.Parse(DefaultBaseURL)
	return u, SourceDefault
}

func (r *Resolver) resolveEnabled(ctx context.Context) (bool, Source) {
	if v, ok := r.lookupEnv(EnvMode); ok {
		return v != "0", SourceEnv
	}

	raw, ok, err := r.store.Get(ctx, KeyEnabled)
	if err != nil {
		r.logger.Warn("read persisted enabled flag", zap.Error(err))
	} else if ok {
		return parseFlag(string(raw)), SourcePersisted
	}

	return false, SourceDefault
}

// ParseBaseURL parses s and accepts it only when it has a scheme and host.
func ParseBaseURL(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
