package service

import (
	"context"
	"errors"
	"strings"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/auth"
	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"
)

// Register создает пользователя с уникальным именем и bcrypt-хешем пароля.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.PolicyViolation("username cannot be empty")
	}
	if password == "" {
		return nil, apperr.PolicyViolation("password cannot be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, apperr.AlreadyExists("username %q is already taken", username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login проверяет учетные данные. Несуществующее имя и неверный пароль
// неразличимы для вызывающего.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.PermissionDenied("invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.PermissionDenied("invalid username or password")
	}
	if user.Banned {
		return nil, apperr.PermissionDenied("this account is banned")
	}
	return user, nil
}

// Users возвращает всех пользователей.
func (s *Service) Users(ctx context.Context) ([]*domain.User, error) {
	return s.store.GetUsers(ctx)
}

// BlockUser добавляет имя в список заблокированных. Повторная блокировка —
// no-op.
func (s *Service) BlockUser(ctx context.Context, userID, targetUsername string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err, "user %s not found", userID)
	}
	if user.Username == targetUsername {
		return apperr.PolicyViolation("cannot block yourself")
	}
	if _, err := s.store.GetUserByUsername(ctx, targetUsername); err != nil {
		return notFound(err, "user %q not found", targetUsername)
	}

	if user.HasBlocked(targetUsername) {
		return nil
	}
	user.Blocked = append(user.Blocked, targetUsername)
	return s.store.UpdateUser(ctx, user)
}

// UnblockUser убирает имя из списка заблокированных. Снятие отсутствующей
// блокировки — no-op.
func (s *Service) UnblockUser(ctx context.Context, userID, targetUsername string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err, "user %s not found", userID)
	}

	kept := user.Blocked[:0]
	for _, b := range user.Blocked {
		if b != targetUsername {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(user.Blocked) {
		return nil
	}
	user.Blocked = kept
	return s.store.UpdateUser(ctx, user)
}
