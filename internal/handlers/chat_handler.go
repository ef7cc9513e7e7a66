package handlers

import (
	"net/http"

	"freelancehub/internal/middleware"
	"freelancehub/internal/services"
	"freelancehub/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{BaseHandler: base, chatService: chatService}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/projects/:id/messages", h.GetProjectMessages)
	r.POST("/projects/:id/messages", h.SendMessage)
	r.GET("/conversations", h.GetConversations)
}

// GetProjectMessages returns the thread oldest-first and marks the
// caller's unread messages in it as read.
func (h *ChatHandler) GetProjectMessages(c *gin.Context) {
	resp, err := h.chatService.GetProjectMessages(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	msg, err := h.chatService.SendMessage(h.GetDB(c), middleware.GetUserID(c), c.Param("id"), req.ReceiverID, req.Content)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) GetConversations(c *gin.Context) {
	resp, err := h.chatService.GetConversations(h.GetDB(c), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
