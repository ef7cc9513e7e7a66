package models

import "time"

type Notification struct {
	BaseModel
	UserID  string           `gorm:"not null;index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `json:"message"`

	// Loosely-typed reference to whatever raised the notification
	// (proposal id, milestone id, message id).
	RelatedID string     `json:"related_id,omitempty"`
	IsRead    bool       `gorm:"default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
}
