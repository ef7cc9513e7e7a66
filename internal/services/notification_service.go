package services

import (
	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"gorm.io/gorm"
)

type NotificationService interface {
	List(db *gorm.DB, userID string, query *dto.NotificationListQuery) (*dto.NotificationListResponse, error)
	MarkRead(db *gorm.DB, userID, notificationID string) (*models.Notification, error)
	MarkAllRead(db *gorm.DB, userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	clock            Clock
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, clock Clock) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		clock:            clock,
	}
}

func (s *notificationService) List(db *gorm.DB, userID string, query *dto.NotificationListQuery) (*dto.NotificationListResponse, error) {
	limit := query.Limit
	if limit == 0 {
		limit = 50
	}

	notifications, total, err := s.notificationRepo.FindByUser(db, userID, query.Unread, limit, query.Offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	unread, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) MarkRead(db *gorm.DB, userID, notificationID string) (*models.Notification, error) {
	notification, err := s.notificationRepo.FindByID(db, notificationID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if notification.UserID != userID {
		return nil, apperrors.NewForbiddenError("Cannot mark another user's notification")
	}

	if !notification.IsRead {
		now := s.clock.Now()
		if err := s.notificationRepo.MarkRead(db, notificationID, now); err != nil {
			return nil, apperrors.InternalError(err)
		}
		notification.IsRead = true
		notification.ReadAt = &now
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(db *gorm.DB, userID string) (int64, error) {
	marked, err := s.notificationRepo.MarkAllRead(db, userID, s.clock.Now())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return marked, nil
}
