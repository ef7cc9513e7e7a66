package dto

import (
	"freelancehub/internal/models"

	"freelancehub/internal/repositories"
)

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required" validate:"required,min=1,max=5000"`
}

type MessageListResponse struct {
	Messages []models.Message `json:"messages"`
	// Number of messages flipped unread -> read by this fetch.
	MarkedRead int64 `json:"marked_read"`
}

type ConversationListResponse struct {
	Conversations []repositories.Conversation `json:"conversations"`
}
