package service

import (
	"context"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/domain"
)

// Notifications возвращает уведомления получателя, новые сверху.
func (s *Service) Notifications(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	return s.store.GetNotificationsByRecipient(ctx, recipientID)
}

// MarkNotificationRead помечает уведомление прочитанным. Чужое
// уведомление неотличимо от несуществующего.
func (s *Service) MarkNotificationRead(ctx context.Context, recipientID, notificationID string) (*domain.Notification, error) {
	n, err := s.store.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return nil, notFound(err, "notification %s not found", notificationID)
	}
	if n.RecipientID != recipientID {
		return nil, apperr.NotFound("notification %s not found", notificationID)
	}

	if n.IsRead {
		return n, nil
	}
	n.IsRead = true
	if err := s.store.UpdateNotification(ctx, n); err != nil {
		return nil, notFound(err, "notification %s not found", notificationID)
	}
	return n, nil
}
