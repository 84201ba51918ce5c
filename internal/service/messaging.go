package service

import (
	"context"
	"strings"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/domain"
)

// SendMessage доставляет личное сообщение. Доставка отклоняется,
// если получатель заблокировал отправителя или наоборот.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverUsername, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.PolicyViolation("message content cannot be empty")
	}

	sender, err := s.store.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, notFound(err, "user %s not found", senderID)
	}
	receiver, err := s.store.GetUserByUsername(ctx, receiverUsername)
	if err != nil {
		return nil, notFound(err, "user %q not found", receiverUsername)
	}

	if receiver.HasBlocked(sender.Username) || sender.HasBlocked(receiver.Username) {
		return nil, apperr.Blocked("message delivery refused")
	}

	return s.store.CreateMessage(ctx, &domain.Message{
		Sender:    sender.Username,
		Receiver:  receiver.Username,
		Content:   content,
		CreatedAt: s.now(),
	})
}

// Messages возвращает все сообщения, новые сверху.
func (s *Service) Messages(ctx context.Context) ([]*domain.Message, error) {
	return s.store.GetMessages(ctx)
}
