package services

import (
	"strconv"

	"freelancehub/internal/metrics"
	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"gorm.io/gorm"
)

// Pusher delivers a payload to a user's live connections. Best-effort,
// at-most-once: the return value only says whether any connection was
// found, not that the peer read anything.
type Pusher interface {
	PushToUser(userID string, payload any) bool
}

// WSMessageEnvelope is the frame pushed to a receiver's live connection.
type WSMessageEnvelope struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message"`
}

type ChatService interface {
	SendMessage(db *gorm.DB, senderID, projectID, receiverID, content string) (*models.Message, error)
	GetProjectMessages(db *gorm.DB, userID, projectID string) (*dto.MessageListResponse, error)
	GetConversations(db *gorm.DB, userID string) (*dto.ConversationListResponse, error)
}

type chatService struct {
	messageRepo      repositories.MessageRepository
	projectRepo      repositories.ProjectRepository
	notificationRepo repositories.NotificationRepository
	pusher           Pusher
}

func NewChatService(
	messageRepo repositories.MessageRepository,
	projectRepo repositories.ProjectRepository,
	notificationRepo repositories.NotificationRepository,
	pusher Pusher,
) ChatService {
	return &chatService{
		messageRepo:      messageRepo,
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

// SendMessage persists the message, then pushes it to the receiver's live
// connections, then records a notification. The notification is created
// unconditionally: even when the live push lands, a reconnecting client
// still finds its unread indicator. Persist + notify share a transaction;
// the push is fire-and-forget in between and is allowed to miss.
func (s *chatService) SendMessage(db *gorm.DB, senderID, projectID, receiverID, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperrors.NewBadRequestError("message content must not be empty")
	}

	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !project.IsParticipant(senderID) {
		return nil, apperrors.ErrNotProjectParticipant
	}
	if !project.IsParticipant(receiverID) || receiverID == senderID {
		return nil, apperrors.NewBadRequestError("receiver is not the project counterparty")
	}

	message := &models.Message{
		ProjectID:  projectID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.messageRepo.Create(tx, message); err != nil {
			return err
		}
		return createNotification(tx, s.notificationRepo,
			receiverID, models.NotificationTypeMessage,
			"New message",
			"You have a new message in one of your projects",
			message.ID)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	delivered := false
	if s.pusher != nil {
		delivered = s.pusher.PushToUser(receiverID, WSMessageEnvelope{
			Type:    "new_message",
			Message: message,
		})
	}
	metrics.ChatPushes.WithLabelValues(strconv.FormatBool(delivered)).Inc()

	return message, nil
}

// GetProjectMessages returns the conversation in creation order and flips
// every message addressed to the caller to read. The flip matches only
// unread rows, so fetching twice is a no-op the second time.
func (s *chatService) GetProjectMessages(db *gorm.DB, userID, projectID string) (*dto.MessageListResponse, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !project.IsParticipant(userID) {
		return nil, apperrors.ErrNotProjectParticipant
	}

	var marked int64
	var messages []models.Message
	err = db.Transaction(func(tx *gorm.DB) error {
		marked, err = s.messageRepo.MarkConversationRead(tx, projectID, userID)
		if err != nil {
			return err
		}
		messages, err = s.messageRepo.FindByProject(tx, projectID)
		return err
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.MessageListResponse{Messages: messages, MarkedRead: marked}, nil
}

func (s *chatService) GetConversations(db *gorm.DB, userID string) (*dto.ConversationListResponse, error) {
	conversations, err := s.messageRepo.GetConversations(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ConversationListResponse{Conversations: conversations}, nil
}
