package domain

import "time"

// User представляет пользователя в системе.
type User struct {
	ID           string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Blocked      []string  `json:"blocked" gorm:"type:text;serializer:json"`
	Banned       bool      `json:"banned" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// HasBlocked сообщает, заблокировал ли пользователь указанное имя.
func (u *User) HasBlocked(username string) bool {
	for _, b := range u.Blocked {
		if b == username {
			return true
		}
	}
	return false
}

// Post представляет пост в ленте.
type Post struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;index"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:varchar(2000);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// Like представляет лайк. Пара (PostID, AuthorID) уникальна —
// это инвариант хранилища, а не только проверка в приложении.
type Like struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_author"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_author"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// Notification представляет уведомление пользователю.
type Notification struct {
	ID          string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecipientID string    `json:"recipientId" gorm:"type:uuid;not null;index"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	IsRead      bool      `json:"isRead" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// Message — личное сообщение (старая чат-подсистема, от ленты не зависит).
// Sender и Receiver — имена пользователей, как в исходных версиях.
type Message struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Sender    string    `json:"sender" gorm:"type:varchar(255);not null;index"`
	Receiver  string    `json:"receiver" gorm:"type:varchar(255);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// FeedComment — комментарий в составе ленты с уже разрешённым именем автора.
type FeedComment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedItem — пост глазами конкретного зрителя: агрегаты и комментарии
// прикреплены, порядок определяет Feed Composer.
type FeedItem struct {
	ID            string         `json:"id"`
	AuthorID      string         `json:"authorId"`
	Author        string         `json:"author"`
	Content       string         `json:"content"`
	CreatedAt     time.Time      `json:"createdAt"`
	LikeCount     int            `json:"likeCount"`
	LikedByViewer bool           `json:"likedByViewer"`
	Comments      []*FeedComment `json:"comments"`
}

// Типы событий, рассылаемых наблюдателям.
const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
	EventLikeCreated    = "like.created"
	EventLikeDeleted    = "like.deleted"
)

// Event — структура, которую Change Broadcaster отправляет каждому
// подключённому наблюдателю при любой мутации.
type Event struct {
	Type      string    `json:"type"`
	EntityID  string    `json:"entityId"`
	PostID    string    `json:"postId,omitempty"`
	ActorID   string    `json:"actorId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
