package handlers

import (
	"net/http"

	"lexassist/models"
	"lexassist/services/chat"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	ChatService chat.ChatService
}

func (h *ChatHandler) CreateSessionHandler(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, err)
		return
	}
	s, err := h.ChatService.CreateSession(c.Request.Context(), currentUserID(c), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *ChatHandler) ListSessionsHandler(c *gin.Context) {
	sessions, err := h.ChatService.ListSessions(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *ChatHandler) MessagesHandler(c *gin.Context) {
	msgs, err := h.ChatService.GetMessages(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendHandler handles POST /api/chat/sessions/:id/messages. 402 when the
// caller has no usable license, 502 when the model failed (nothing charged).
func (h *ChatHandler) SendHandler(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := h.ChatService.SendMessage(c.Request.Context(), currentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
