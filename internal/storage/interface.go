package storage

import (
	"context"
	"errors"
	"time"

	"github.com/UkralStul/social-feed-service/internal/domain"
)

// Сигнальные ошибки хранилища. Сервисный слой оборачивает их
// в типизированные отказы для вызывающего.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Storage определяет контракт для хранилищ. Каждый вызов — короткая
// read-modify-write операция с фиксацией на каждый вызов; никакой
// транзакции длиной в запрос контракт не обещает.
type Storage interface {
	// Пользователи
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	GetUsers(ctx context.Context) ([]*domain.User, error)

	// Посты
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	GetPosts(ctx context.Context) ([]*domain.Post, error)
	GetPostsBefore(ctx context.Context, cutoff time.Time) ([]*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, id string) error
	CountPostsByAuthorSince(ctx context.Context, authorID string, since time.Time) (int, error)
	CountPostsSince(ctx context.Context, since time.Time) (int, error)

	// Комментарии
	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentByID(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, id string) error
	GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error)
	GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error)
	DeleteCommentsByPostID(ctx context.Context, postID string) error

	// Лайки
	CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error)
	GetLikeByPostAndAuthor(ctx context.Context, postID, authorID string) (*domain.Like, error)
	DeleteLikeByPostAndAuthor(ctx context.Context, postID, authorID string) error
	CountLikesByPostID(ctx context.Context, postID string) (int, error)
	CountLikesByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error)
	GetLikedPostIDs(ctx context.Context, authorID string, postIDs []string) (map[string]bool, error)
	DeleteLikesByPostID(ctx context.Context, postID string) error

	// Уведомления
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	GetNotificationsByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error)
	GetNotificationByID(ctx context.Context, id string) (*domain.Notification, error)
	UpdateNotification(ctx context.Context, n *domain.Notification) error

	// Сообщения
	CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	GetMessages(ctx context.Context) ([]*domain.Message, error)
}
