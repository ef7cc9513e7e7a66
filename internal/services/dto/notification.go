package dto

import "freelancehub/internal/models"

type NotificationListQuery struct {
	Unread bool `form:"unread"`
	Limit  int  `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int  `form:"offset" validate:"omitempty,min=0"`
}

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unread_count"`
}
