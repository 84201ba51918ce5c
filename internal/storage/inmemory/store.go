package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"
	"github.com/google/uuid"
)

// Store реализует интерфейс Storage в памяти.
type Store struct {
	mu sync.RWMutex

	users         map[string]*domain.User
	usersByName   map[string]string // map[username]userID
	posts         map[string]*domain.Post
	comments      map[string]*domain.Comment
	likes         map[string]*domain.Like
	likesByKey    map[string]string // map[postID|authorID]likeID
	notifications map[string]*domain.Notification
	messages      []*domain.Message
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:         make(map[string]*domain.User),
		usersByName:   make(map[string]string),
		posts:         make(map[string]*domain.Post),
		comments:      make(map[string]*domain.Comment),
		likes:         make(map[string]*domain.Like),
		likesByKey:    make(map[string]string),
		notifications: make(map[string]*domain.Notification),
	}
}

func likeKey(postID, authorID string) string {
	return postID + "|" + authorID
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByName[user.Username]; ok {
		return nil, storage.ErrAlreadyExists
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	if user.Blocked == nil {
		user.Blocked = []string{}
	}
	s.users[user.ID] = user
	s.usersByName[user.Username] = user.ID
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
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
	s.posts[post.ID] = post
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return post, nil
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		all = append(all, p)
	}
	// Новые сверху, как в выдаче постов у исходных версий.
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

	if _, ok := s.posts[post.ID]; !ok {
		return storage.ErrNotFound
	}
	s.posts[post.ID] = post
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
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
	s.comments[comment.ID] = comment
	return comment, nil
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return comment, nil
}

func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[comment.ID]; !ok {
		return storage.ErrNotFound
	}
	s.comments[comment.ID] = comment
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.comments, id)
	return nil
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

// commentsOfPost возвращает комментарии поста, старые сверху.
// Вызывающий держит блокировку.
func (s *Store) commentsOfPost(postID string) []*domain.Comment {
	comments := make([]*domain.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments
}

func (s *Store) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
		}
	}
	return nil
}

// === Like Methods ===

func (s *Store) CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := likeKey(like.PostID, like.AuthorID)
	if _, ok := s.likesByKey[key]; ok {
		return nil, storage.ErrAlreadyExists
	}
	like.ID = uuid.NewString()
	like.CreatedAt = time.Now().UTC()
	s.likes[like.ID] = like
	s.likesByKey[key] = like.ID
	return like, nil
}

func (s *Store) GetLikeByPostAndAuthor(ctx context.Context, postID, authorID string) (*domain.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.likesByKey[likeKey(postID, authorID)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.likes[id], nil
}

func (s *Store) DeleteLikeByPostAndAuthor(ctx context.Context, postID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := likeKey(postID, authorID)
	id, ok := s.likesByKey[key]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.likes, id)
	delete(s.likesByKey, key)
	return nil
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

	result := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		if _, ok := s.likesByKey[likeKey(id, authorID)]; ok {
			result[id] = true
		}
	}
	return result, nil
}

func (s *Store) DeleteLikesByPostID(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.likes {
		if l.PostID == postID {
			delete(s.likes, id)
			delete(s.likesByKey, likeKey(l.PostID, l.AuthorID))
		}
	}
	return nil
}

// === Notification Methods ===

func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	s.notifications[n.ID] = n
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

	n, ok := s.notifications[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return n, nil
}

func (s *Store) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[n.ID]; !ok {
		return storage.ErrNotFound
	}
	s.notifications[n.ID] = n
	return nil
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
