package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"
)

// Суточные лимиты публикаций. Проверка "посчитал-вставил" не атомарна,
// поэтому под конкурентной нагрузкой у границы серверный лимит может быть
// ненадолго превышен — это мягкий лимит.
const (
	maxPostsPerAuthorPerDay = 1
	maxPostsPerDay          = 20
)

// CreatePost публикует пост от имени автора, если суточные лимиты
// позволяют. Оба отказа — PolicyViolation с различимыми текстами.
func (s *Service) CreatePost(ctx context.Context, authorID, content string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.PolicyViolation("post content cannot be empty")
	}

	dayStart := startOfDay(s.now())

	byAuthor, err := s.store.CountPostsByAuthorSince(ctx, authorID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count author posts: %w", err)
	}
	if byAuthor >= maxPostsPerAuthorPerDay {
		return nil, apperr.PolicyViolation("you have already posted today")
	}

	total, err := s.store.CountPostsSince(ctx, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if total >= maxPostsPerDay {
		return nil, apperr.PolicyViolation("server daily post limit reached")
	}

	post, err := s.store.CreatePost(ctx, &domain.Post{
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.publish(domain.EventPostCreated, post.ID, post.ID, authorID)
	return post, nil
}

// EditPost меняет текст поста. Доступно только автору.
func (s *Service) EditPost(ctx context.Context, actorID, postID, content string) (*domain.Post, error) {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post %s not found", postID)
	}
	if post.AuthorID != actorID {
		return nil, apperr.PermissionDenied("only the author can edit this post")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.PolicyViolation("post content cannot be empty")
	}

	post.Content = content
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, notFound(err, "post %s not found", postID)
	}

	s.publish(domain.EventPostUpdated, post.ID, post.ID, actorID)
	return post, nil
}

// DeletePost удаляет пост автора вместе со всеми его комментариями
// и лайками.
func (s *Service) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return notFound(err, "post %s not found", postID)
	}
	if post.AuthorID != actorID {
		return apperr.PermissionDenied("only the author can delete this post")
	}

	if err := s.cascadeDeletePost(ctx, postID); err != nil {
		return err
	}

	s.publish(domain.EventPostDeleted, postID, postID, actorID)
	return nil
}

// cascadeDeletePost — явная каскадная зачистка: сперва зависимые
// комментарии и лайки, затем сам пост. Никаких сирот после возврата.
func (s *Service) cascadeDeletePost(ctx context.Context, postID string) error {
	if err := s.store.DeleteCommentsByPostID(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete comments of post %s: %w", postID, err)
	}
	if err := s.store.DeleteLikesByPostID(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete likes of post %s: %w", postID, err)
	}
	return s.store.DeletePost(ctx, postID)
}

// PruneExpiredPosts удаляет каждый пост, чья календарная дата уже
// в прошлом, с тем же каскадом. Возвращает число удаленных постов.
// Запускается раз в сутки фоновым заданием и спокойно переживает
// параллельные чтения: пост может исчезнуть посреди чужого запроса.
func (s *Service) PruneExpiredPosts(ctx context.Context) (int, error) {
	cutoff := startOfDay(s.now())

	expired, err := s.store.GetPostsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired posts: %w", err)
	}

	pruned := 0
	for _, post := range expired {
		if err := s.cascadeDeletePost(ctx, post.ID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue // кто-то успел удалить раньше
			}
			return pruned, err
		}
		pruned++
		s.publish(domain.EventPostDeleted, post.ID, post.ID, "")
	}
	return pruned, nil
}
