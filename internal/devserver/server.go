// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Defaults for Config fields left empty.
const (
	DefaultTokenTTL   = 30 * 24 * time.Hour
	DefaultCallTTL    = 2 * time.Hour
	DefaultLiveKitURL = "wss://livekit.invalid"
	DefaultBotCode    = "bot-dev"
)

// Config configures a Server.
type Config struct {
	// JWTSecret signs session and call tokens. Required.
	JWTSecret string
	TokenTTL  time.Duration
	CallTTL   time.Duration
	// DevCode, when set, is the login code for every phone instead of a
	// random one.
	DevCode string
	// BotCode authorizes bot logins.
	BotCode string
	// LiveKitURL is returned with every call credential.
	LiveKitURL string
	// MaxMessageLimit caps the limit query parameter.
	MaxMessageLimit int
}

func (c *Config) fillDefaults() {
	if c.TokenTTL == 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.CallTTL == 0 {
		c.CallTTL = DefaultCallTTL
	}
	if c.LiveKitURL == "" {
		c.LiveKitURL = DefaultLiveKitURL
	}
	if c.BotCode == "" {
		c.BotCode = DefaultBotCode
	}
	if c.MaxMessageLimit == 0 {
		c.MaxMessageLimit = 200
	}
}

// Server is an in-memory minigram backend.
type Server struct {
	cfg    Config
	logger *zap.Logger
	state  *state
	engine *gin.Engine
}

// New builds a Server and its routes.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("devserver: JWT secret is required")
	}
	cfg.fillDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		state:  newState(func() time.Time { return time.Now().UTC() }),
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devserver listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("devserver shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pub := r.Group("/v1/auth")
	pub.POST("/request", s.requestCode)
	pub.POST("/verify", s.verifyCode)
	pub.POST("/bot", s.authorizeBot)

	v1 := r.Group("/v1")
	v1.Use(s.authMiddleware())
	v1.GET("/me", s.me)
	v1.GET("/chats", s.listChats)
	v1.POST("/chats", s.createChat)
	v1.GET("/chats/:id/messages", s.listMessages)
	v1.POST("/chats/:id/messages", s.sendMessage)
	v1.POST("/calls", s.createCall)
	v1.POST("/calls/join", s.joinCall)

	return r
}

// requestLogger logs method, route, status and latency. Bodies and headers
// are never logged.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
	}
}

// loginCode returns the configured dev code or a random 6-digit code.
func (s *Server) loginCode() (string, error) {
	if s.cfg.DevCode != "" {
		return s.cfg.DevCode, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
