package models

// Message is one chat message in a project conversation. Immutable once
// created except for IsRead, which flips when the receiver fetches the
// conversation.
type Message struct {
	BaseModel
	ProjectID  string `gorm:"not null;index" json:"project_id"`
	SenderID   string `gorm:"not null;index" json:"sender_id"`
	ReceiverID string `gorm:"not null;index" json:"receiver_id"`
	Content    string `gorm:"not null" json:"content"`
	IsRead     bool   `gorm:"default:false" json:"is_read"`
}
