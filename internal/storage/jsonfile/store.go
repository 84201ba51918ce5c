// Package jsonfile хранит каждую коллекцию сущностей как JSON-массив
// в отдельном файле. Любая мутация переписывает файл коллекции целиком
// (read-modify-write-whole-file, без журнала и без защиты от частичной
// записи — осознанное ограничение этого варианта).
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"
	"github.com/google/uuid"
)

const (
	usersFile         = "users.json"
	postsFile         = "posts.json"
	commentsFile      = "comments.json"
	likesFile         = "likes.json"
	notificationsFile = "notifications.json"
	messagesFile      = "messages.json"
)

// userRecord — дисковое представление пользователя. У domain.User хеш
// пароля исключен из JSON (`json:"-"`), но в persisted-файле он обязан
// сохраниться, иначе вход перестанет работать после рестарта.
type userRecord struct {
	*domain.User
	PasswordHash string `json:"passwordHash"`
}

// Store реализует интерфейс Storage поверх плоских JSON-файлов.
type Store struct {
	mu  sync.RWMutex
	dir string

	users         []*domain.User
	posts         []*domain.Post
	comments      []*domain.Comment
	likes         []*domain.Like
	notifications []*domain.Notification
	messages      []*domain.Message
}

// New загружает существующие коллекции из каталога dir (или начинает
// с пустых, если файлов еще нет).
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := &Store{dir: dir}
	for file, target := range map[string]interface{}{
		postsFile:         &s.posts,
		commentsFile:      &s.comments,
		likesFile:         &s.likes,
		notificationsFile: &s.notifications,
		messagesFile:      &s.messages,
	} {
		if err := s.load(file, target); err != nil {
			return nil, err
		}
	}

	var records []userRecord
	if err := s.load(usersFile, &records); err != nil {
		return nil, err
	}
	s.users = make([]*domain.User, len(records))
	for i, r := range records {
		r.User.PasswordHash = r.PasswordHash
		s.users[i] = r.User
	}

	return s, nil
}

// persistUsers пишет users.json через userRecord, чтобы не потерять хеши.
func (s *Store) persistUsers() error {
	records := make([]userRecord, len(s.users))
	for i, u := range s.users {
		records[i] = userRecord{User: u, PasswordHash: u.PasswordHash}
	}
	return s.persist(usersFile, records)
}

func (s *Store) load(file string, target interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", file, err)
	}
	return nil
}

// persist переписывает файл коллекции целиком. Вызывающий держит блокировку.
func (s *Store) persist(file string, collection interface{}) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", file, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, file), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, storage.ErrAlreadyExists
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	if user.Blocked == nil {
		user.Blocked = []string{}
	}
	s.users = append(s.users, user)
	if err := s.persistUsers(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := make(map[string]*domain.User, len(ids))
	for _, u := range s.users {
		if wanted[u.ID] {
			result[u.ID] = u
		}
	}
	return result, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == user.ID {
			s.users[i] = user
			return s.persistUsers()
		}
	}
	return storage.ErrNotFound
}

func (s *Store) GetUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.User, len(s.users))
	copy(all, s.users)
	sort.Slice(all, func(i, j int) bool {
		return all[i].Username < all[j].Username
	})
	return all, nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = uuid.NewString()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	s.posts = append(s.posts, post)
	if err := s.persist(postsFile, s.posts); err != nil {
		s.posts = s.posts[:len(s.posts)-1]
		return nil, err
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Post, len(s.posts))
	copy(all, s.posts)
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (s *Store) GetPostsBefore(ctx context.Context, cutoff time.Time) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []*domain.Post
	for _, p := range s.posts {
		if p.CreatedAt.Before(cutoff) {
			expired = append(expired, p)
		}
	}
	return expired, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.posts {
		if p.ID == post.ID {
			s.posts[i] = post
			return s.persist(postsFile, s.posts)
		}
	}
	return storage.ErrNotFound
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return s.persist(postsFile, s.posts)
		}
	}
	return storage.ErrNotFound
}

func (s *Store) CountPostsByAuthorSince(ctx context.Context, authorID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.posts {
		if p.AuthorID == authorID && !p.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountPostsSince(ctx context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.posts {
		if !p.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()
	s.comments = append(s.comments, comment)
	if err := s.persist(commentsFile, s.comments); err != nil {
		s.comments = s.comments[:len(s.comments)-1]
		return nil, err
	}
	return comment, nil
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.comments {
		if c.ID == comment.ID {
			s.comments[i] = comment
			return s.persist(commentsFile, s.comments)
		}
	}
	return storage.ErrNotFound
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.comments {
		if c.ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return s.persist(commentsFile, s.comments)
		}
	}
	return storage.ErrNotFound
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.commentsOfPost(postID), nil
}

func (s *Store) GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]*domain.Comment, len(postIDs))
	for _, id := range postIDs {
		result[id] = s.commentsOfPost(id)
	}
	return result, nil
}

func (s *Store) commentsOfPost(postID string) []*domain.Comment {
	comments := make([]*domain.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments
}

func (s *Store) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return s.persist(commentsFile, s.comments)
}

// === Like Methods ===

func (s *Store) CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.likes {
		if l.PostID == like.PostID && l.AuthorID == like.AuthorID {
			return nil, storage.ErrAlreadyExists
		}
	}
	like.ID = uuid.NewString()
	like.CreatedAt = time.Now().UTC()
	s.likes = append(s.likes, like)
	if err := s.persist(likesFile, s.likes); err != nil {
		s.likes = s.likes[:len(s.likes)-1]
		return nil, err
	}
	return like, nil
}

func (s *Store) GetLikeByPostAndAuthor(ctx context.Context, postID, authorID string) (*domain.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.likes {
		if l.PostID == postID && l.AuthorID == authorID {
			return l, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) DeleteLikeByPostAndAuthor(ctx context.Context, postID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.likes {
		if l.PostID == postID && l.AuthorID == authorID {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			return s.persist(likesFile, s.likes)
		}
	}
	return storage.ErrNotFound
}

func (s *Store) CountLikesByPostID(ctx context.Context, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, l := range s.likes {
		if l.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountLikesByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]int, len(postIDs))
	for _, id := range postIDs {
		result[id] = 0
	}
	for _, l := range s.likes {
		if _, ok := result[l.PostID]; ok {
			result[l.PostID]++
		}
	}
	return result, nil
}

func (s *Store) GetLikedPostIDs(ctx context.Context, authorID string, postIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	result := make(map[string]bool)
	for _, l := range s.likes {
		if l.AuthorID == authorID && wanted[l.PostID] {
			result[l.PostID] = true
		}
	}
	return result, nil
}

func (s *Store) DeleteLikesByPostID(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.likes[:0]
	for _, l := range s.likes {
		if l.PostID != postID {
			kept = append(kept, l)
		}
	}
	s.likes = kept
	return s.persist(likesFile, s.likes)
}

// === Notification Methods ===

func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	s.notifications = append(s.notifications, n)
	if err := s.persist(notificationsFile, s.notifications); err != nil {
		s.notifications = s.notifications[:len(s.notifications)-1]
		return nil, err
	}
	return n, nil
}

func (s *Store) GetNotificationsByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) GetNotificationByID(ctx context.Context, id string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.notifications {
		if existing.ID == n.ID {
			s.notifications[i] = n
			return s.persist(notificationsFile, s.notifications)
		}
	}
	return storage.ErrNotFound
}

// === Message Methods ===

func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.messages = append(s.messages, msg)
	if err := s.persist(messagesFile, s.messages); err != nil {
		s.messages = s.messages[:len(s.messages)-1]
		return nil, err
	}
	return msg, nil
}

func (s *Store) GetMessages(ctx context.Context) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Message, len(s.messages))
	copy(all, s.messages)
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
