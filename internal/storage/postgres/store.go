package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Переводим ошибки драйвера в gorm.ErrDuplicatedKey и т.п.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Like{},
		&domain.Notification{},
		&domain.Message{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// translate переводит ошибки gorm в сигнальные ошибки хранилища.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrAlreadyExists
	default:
		return err
	}
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.Blocked == nil {
		user.Blocked = []string{}
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	var users []*domain.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	result := make(map[string]*domain.User, len(users))
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res := s.db.WithContext(ctx).Save(user)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, translate(err)
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error
	return posts, err
}

func (s *Store) GetPostsBefore(ctx context.Context, cutoff time.Time) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Find(&posts).Error
	return posts, err
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) error {
	res := s.db.WithContext(ctx).Save(post)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Post{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountPostsByAuthorSince(ctx context.Context, authorID string, since time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Post{}).
		Where("author_id = ? AND created_at >= ?", authorID, since).
		Count(&count).Error
	return int(count), err
}

func (s *Store) CountPostsSince(ctx context.Context, since time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Post{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return int(count), err
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, translate(err)
	}
	return comment, nil
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	res := s.db.WithContext(ctx).Save(comment)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Comment{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (s *Store) GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	var comments []*domain.Comment
	// Загружаем комментарии для всех постов одним запросом
	err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("post_id, created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string][]*domain.Comment, len(postIDs))
	for _, id := range postIDs {
		result[id] = []*domain.Comment{}
	}
	for _, c := range comments {
		result[c.PostID] = append(result[c.PostID], c)
	}
	return result, nil
}

func (s *Store) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	return s.db.WithContext(ctx).Delete(&domain.Comment{}, "post_id = ?", postID).Error
}

// === Like Methods ===

func (s *Store) CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	// Уникальность (post_id, author_id) обеспечивает составной индекс
	if err := s.db.WithContext(ctx).Create(like).Error; err != nil {
		return nil, translate(err)
	}
	return like, nil
}

func (s *Store) GetLikeByPostAndAuthor(ctx context.Context, postID, authorID string) (*domain.Like, error) {
	var like domain.Like
	err := s.db.WithContext(ctx).First(&like, "post_id = ? AND author_id = ?", postID, authorID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (s *Store) DeleteLikeByPostAndAuthor(ctx context.Context, postID, authorID string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Like{}, "post_id = ? AND author_id = ?", postID, authorID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountLikesByPostID(ctx context.Context, postID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return int(count), err
}

func (s *Store) CountLikesByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	type row struct {
		PostID string
		Count  int
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&domain.Like{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int, len(postIDs))
	for _, id := range postIDs {
		result[id] = 0
	}
	for _, r := range rows {
		result[r.PostID] = r.Count
	}
	return result, nil
}

func (s *Store) GetLikedPostIDs(ctx context.Context, authorID string, postIDs []string) (map[string]bool, error) {
	var likes []*domain.Like
	err := s.db.WithContext(ctx).
		Where("author_id = ? AND post_id IN ?", authorID, postIDs).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool, len(likes))
	for _, l := range likes {
		result[l.PostID] = true
	}
	return result, nil
}

func (s *Store) DeleteLikesByPostID(ctx context.Context, postID string) error {
	return s.db.WithContext(ctx).Delete(&domain.Like{}, "post_id = ?", postID).Error
}

// === Notification Methods ===

func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, translate(err)
	}
	return n, nil
}

func (s *Store) GetNotificationsByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (s *Store) GetNotificationByID(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *Store) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	res := s.db.WithContext(ctx).Save(n)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// === Message Methods ===

func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, translate(err)
	}
	return msg, nil
}

func (s *Store) GetMessages(ctx context.Context) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&messages).Error
	return messages, err
}
