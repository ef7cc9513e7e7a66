package repositories

import (
	"freelancehub/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(db *gorm.DB, message *models.Message) error
	FindByProject(db *gorm.DB, projectID string) ([]models.Message, error)
	MarkConversationRead(db *gorm.DB, projectID, receiverID string) (int64, error)
	GetConversations(db *gorm.DB, userID string) ([]Conversation, error)
}

// Conversation is the per-project inbox summary: the most recent message
// plus how many messages addressed to the user are still unread.
type Conversation struct {
	ProjectID   string         `json:"project_id"`
	LastMessage models.Message `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

type messageRepository struct{}

func NewMessageRepository() MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(db *gorm.DB, message *models.Message) error {
	return db.Create(message).Error
}

func (r *messageRepository) FindByProject(db *gorm.DB, projectID string) ([]models.Message, error) {
	var messages []models.Message
	err := db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead flips every unread message addressed to receiverID
// within the project. Idempotent: a second call matches zero rows.
func (r *messageRepository) MarkConversationRead(db *gorm.DB, projectID, receiverID string) (int64, error) {
	result := db.Model(&models.Message{}).
		Where("project_id = ? AND receiver_id = ? AND is_read = ?", projectID, receiverID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// GetConversations groups the user's messages by project, keeping the
// newest message per group. An O(messages-of-user) scan; a rollup table
// would replace this if conversation counts grow.
func (r *messageRepository) GetConversations(db *gorm.DB, userID string) ([]Conversation, error) {
	var messages []models.Message
	err := db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	byProject := make(map[string]*Conversation)
	var order []string
	for _, msg := range messages {
		conv, ok := byProject[msg.ProjectID]
		if !ok {
			// messages are newest-first, so the first one seen is the last message
			conv = &Conversation{ProjectID: msg.ProjectID, LastMessage: msg}
			byProject[msg.ProjectID] = conv
			order = append(order, msg.ProjectID)
		}
		if msg.ReceiverID == userID && !msg.IsRead {
			conv.UnreadCount++
		}
	}

	conversations := make([]Conversation, 0, len(order))
	for _, projectID := range order {
		conversations = append(conversations, *byProject[projectID])
	}
	return conversations, nil
}
