// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/model"
)

type requestCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type verifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name"`
}

type botRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

type createChatRequest struct {
	Kind   string `json:"kind" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

type createCallRequest struct {
	ChatID *string `json:"chat_id"`
}

type joinCallRequest struct {
	CallID string `json:"call_id" binding:"required"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// =============================================================================
// AUTH
// =============================================================================

// requestCode handles POST /v1/auth/request.
func (s *Server) requestCode(c *gin.Context) {
	var req requestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}
	phone := strings.TrimSpace(req.Phone)

	code, err := s.loginCode()
	if err != nil {
		s.logger.Error("failed to generate login code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send code"})
		return
	}
	s.state.setCode(phone, code)

	// No SMS gateway: the code goes to the operator's log.
	s.logger.Info("login code issued", zap.String("phone", phone), zap.String("code", code))
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// verifyCode handles POST /v1/auth/verify.
func (s *Server) verifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and code are required"})
		return
	}
	phone := strings.TrimSpace(req.Phone)

	if !s.state.consumeCode(phone, strings.TrimSpace(req.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	user := s.state.upsertPhoneUser(phone, strings.TrimSpace(req.Name))
	s.issueSession(c, user)
}

// authorizeBot handles POST /v1/auth/bot.
func (s *Server) authorizeBot(c *gin.Context) {
	var req botRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}
	if req.Code != s.cfg.BotCode {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid bot code"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "bot"
	}
	user := s.state.createBotUser(name)
	s.issueSession(c, user)
}

func (s *Server) issueSession(c *gin.Context, user model.User) {
	token, err := GenerateToken(user.ID, "", s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	s.logger.Info("user signed in", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// me handles GET /v1/me.
func (s *Server) me(c *gin.Context) {
	user, ok := s.state.user(userID(c))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// =============================================================================
// CHATS AND MESSAGES
// =============================================================================

// listChats handles GET /v1/chats.
func (s *Server) listChats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chats": s.state.chatsFor(userID(c))})
}

// createChat handles POST /v1/chats. Only direct chats are supported; an
// existing direct chat with the same peer is returned as-is.
func (s *Server) createChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind and user_id are required"})
		return
	}
	if req.Kind != string(model.ChatKindDirect) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported chat kind"})
		return
	}

	chat, created, err := s.state.directChat(userID(c), strings.TrimSpace(req.UserID))
	if errors.Is(err, errNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to create chat", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, chat)
}

// listMessages handles GET /v1/chats/:id/messages?limit=N. Messages come
// back newest first.
func (s *Server) listMessages(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
			return
		}
		limit = min(n, s.cfg.MaxMessageLimit)
	}

	msgs, err := s.state.recentMessages(c.Param("id"), userID(c), limit)
	if s.chatError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// sendMessage handles POST /v1/chats/:id/messages.
func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is required"})
		return
	}

	msg, err := s.state.addMessage(c.Param("id"), userID(c), req.Body)
	if s.chatError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// chatError writes the response for a chat lookup error and reports
// whether it did.
func (s *Server) chatError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
	case errors.Is(err, errNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this chat"})
	default:
		s.logger.Error("chat operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
	return true
}

// =============================================================================
// CALLS
// =============================================================================

// createCall handles POST /v1/calls.
func (s *Server) createCall(c *gin.Context) {
	var req createCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	chatID := ""
	if req.ChatID != nil {
		chatID = strings.TrimSpace(*req.ChatID)
	}

	call, err := s.state.createCall(chatID, userID(c))
	if s.chatError(c, err) {
		return
	}
	s.issueCallJoin(c, call)
}

// joinCall handles POST /v1/calls/join.
func (s *Server) joinCall(c *gin.Context) {
	var req joinCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "call_id is required"})
		return
	}

	call, err := s.state.joinCall(strings.TrimSpace(req.CallID), userID(c))
	if errors.Is(err, errCallNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	if s.chatError(c, err) {
		return
	}
	s.issueCallJoin(c, call)
}

func (s *Server) issueCallJoin(c *gin.Context, call callRecord) {
	token, err := GenerateToken(userID(c), call.room, s.cfg.JWTSecret, s.cfg.CallTTL)
	if err != nil {
		s.logger.Error("failed to generate call token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue call token"})
		return
	}
	c.JSON(http.StatusOK, model.CallJoin{
		CallID:     call.id,
		Room:       call.room,
		Token:      token,
		LiveKitURL: s.cfg.LiveKitURL,
	})
}
