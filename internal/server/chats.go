package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parleychat/parley/internal/persona"
	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/storage"
)

// replyContextWindow bounds how much history is handed to the provider.
const replyContextWindow = 10

// CreateChatHandler serves POST /api/chats.
func (s *Server) CreateChatHandler(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Persona string `json:"persona"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !persona.Valid(req.Persona) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown persona: " + req.Persona})
		return
	}

	chat := &storage.Chat{Title: req.Title, Persona: req.Persona}
	if err := s.store.CreateChat(c.Request.Context(), chat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A persona chat opens with its greeting.
	if chat.Persona != "" {
		p, err := persona.Get(chat.Persona)
		if err == nil {
			greeting := &storage.Message{ChatID: chat.ChatID, Sender: p.ID, Body: p.Greeting}
			if err := s.store.CreateMessage(c.Request.Context(), greeting); err != nil {
				s.logger.Warn("greeting message failed", "chat", chat.ChatID, "error", err)
			}
		}
	}

	c.JSON(http.StatusCreated, chat)
}

// ListChatsHandler serves GET /api/chats.
func (s *Server) ListChatsHandler(c *gin.Context) {
	chats, err := s.store.ListChats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if chats == nil {
		chats = []storage.Chat{}
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetChatHandler serves GET /api/chats/:id.
func (s *Server) GetChatHandler(c *gin.Context) {
	chat, err := s.store.GetChat(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrChatNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// DeleteChatHandler serves DELETE /api/chats/:id.
func (s *Server) DeleteChatHandler(c *gin.Context) {
	err := s.store.DeleteChat(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrChatNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMessagesHandler serves GET /api/chats/:id/messages.
func (s *Server) ListMessagesHandler(c *gin.Context) {
	chatID := c.Param("id")
	if _, err := s.store.GetChat(c.Request.Context(), chatID); err != nil {
		if errors.Is(err, storage.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	msgs, err := s.store.ListMessages(c.Request.Context(), chatID, intQuery(c, "limit", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if msgs == nil {
		msgs = []storage.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// CreateMessageHandler serves POST /api/chats/:id/messages. It stores the
// user message; when the chat is bound to a persona, a persona reply is
// generated and stored too, and returned alongside.
func (s *Server) CreateMessageHandler(c *gin.Context) {
	chatID := c.Param("id")
	chat, err := s.store.GetChat(c.Request.Context(), chatID)
	if errors.Is(err, storage.ErrChatNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Sender string `json:"sender"`
		Body   string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := &storage.Message{ChatID: chatID, Sender: req.Sender, Body: req.Body}
	if err := s.store.CreateMessage(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reply *storage.Message
	if chat.Persona != "" {
		reply = s.personaReply(c.Request.Context(), chat, msg)
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg, "reply": reply})
}

// personaReply generates and stores the persona's reply. Provider failures
// fall back to the persona's canned lines; storage failures drop the reply.
func (s *Server) personaReply(ctx context.Context, chat *storage.Chat, userMsg *storage.Message) *storage.Message {
	p, err := persona.Get(chat.Persona)
	if err != nil {
		s.logger.Warn("chat references unknown persona", "chat", chat.ChatID, "persona", chat.Persona)
		return nil
	}

	body := p.Reply(userMsg.Body)
	if s.providers != nil {
		if active := s.providers.Active(); active != nil {
			callCtx, cancel := context.WithTimeout(ctx, provider.DefaultTimeout)
			resp, err := active.Reply(callCtx, &provider.ReplyRequest{
				SystemPrompt: p.SystemPrompt,
				Recent:       s.recentContext(callCtx, chat.ChatID),
				UserMessage:  userMsg.Body,
			})
			cancel()
			if err != nil {
				s.logger.Warn("provider reply failed, using canned line",
					"provider", active.Name(), "error", err)
			} else if resp.Text != "" {
				body = resp.Text
			}
		}
	}

	reply := &storage.Message{
		ChatID: chat.ChatID,
		Sender: p.ID,
		Body:   body,
		SentMs: time.Now().UnixMilli(),
	}
	if err := s.store.CreateMessage(ctx, reply); err != nil {
		s.logger.Error("storing persona reply failed", "chat", chat.ChatID, "error", err)
		return nil
	}
	return reply
}

func (s *Server) recentContext(ctx context.Context, chatID string) []provider.MessageContext {
	msgs, err := s.store.ListMessages(ctx, chatID, 0)
	if err != nil {
		return nil
	}
	if len(msgs) > replyContextWindow {
		msgs = msgs[len(msgs)-replyContextWindow:]
	}
	out := make([]provider.MessageContext, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, provider.MessageContext{Sender: m.Sender, Body: m.Body})
	}
	return out
}
