package services

import (
	"freelancehub/internal/metrics"
	"freelancehub/internal/models"
	"freelancehub/internal/repositories"

	"gorm.io/gorm"
)

// createNotification persists a notification and bumps the per-type
// counter. Callers pass the transaction when the notification is part of a
// cascade so it commits or rolls back with the rest.
func createNotification(db *gorm.DB, repo repositories.NotificationRepository,
	userID string, typ models.NotificationType, title, message, relatedID string) error {

	n := &models.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}
	if err := repo.Create(db, n); err != nil {
		return err
	}
	metrics.NotificationsCreated.WithLabelValues(string(typ)).Inc()
	return nil
}
