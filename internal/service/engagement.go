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

const maxCommentLength = 2000

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.PolicyViolation("comment content cannot be empty")
	}
	if len(content) > maxCommentLength {
		return apperr.PolicyViolation("comment content is too long")
	}
	return nil
}

// AddComment создает комментарий к живому посту. Комментарий к уже
// удаленному посту — NotFound. Автор поста получает уведомление,
// если комментирует не он сам.
func (s *Service) AddComment(ctx context.Context, authorID, postID, content string) (*domain.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post %s not found", postID)
	}

	comment, err := s.store.CreateComment(ctx, &domain.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}

	s.notifyPostAuthor(ctx, post, authorID, "%s commented on your post")
	s.publish(domain.EventCommentCreated, comment.ID, postID, authorID)
	return comment, nil
}

// EditComment меняет текст комментария. Доступно только автору
// комментария — даже владелец поста не может его править.
func (s *Service) EditComment(ctx context.Context, actorID, commentID, content string) (*domain.Comment, error) {
	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "comment %s not found", commentID)
	}
	if comment.AuthorID != actorID {
		return nil, apperr.PermissionDenied("only the author can edit this comment")
	}
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, notFound(err, "comment %s not found", commentID)
	}

	s.publish(domain.EventCommentUpdated, comment.ID, comment.PostID, actorID)
	return comment, nil
}

// DeleteComment удаляет комментарий. Та же область действия, что и
// у EditComment.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID string) error {
	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return notFound(err, "comment %s not found", commentID)
	}
	if comment.AuthorID != actorID {
		return apperr.PermissionDenied("only the author can delete this comment")
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return notFound(err, "comment %s not found", commentID)
	}

	s.publish(domain.EventCommentDeleted, commentID, comment.PostID, actorID)
	return nil
}

// ToggleLike ставит лайк идемпотентно: повторный вызов возвращает
// существующий лайк без дубликата, без второго уведомления и без
// события. Второе возвращаемое значение — был ли лайк создан сейчас.
func (s *Service) ToggleLike(ctx context.Context, authorID, postID string) (*domain.Like, bool, error) {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, false, notFound(err, "post %s not found", postID)
	}

	existing, err := s.store.GetLikeByPostAndAuthor(ctx, postID, authorID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	like, err := s.store.CreateLike(ctx, &domain.Like{PostID: postID, AuthorID: authorID})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Гонка с параллельным лайком того же пользователя: уникальный
		// ключ хранилища победил, возвращаем уже существующую запись.
		existing, err := s.store.GetLikeByPostAndAuthor(ctx, postID, authorID)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}

	s.notifyPostAuthor(ctx, post, authorID, "%s liked your post")
	s.publish(domain.EventLikeCreated, like.ID, postID, authorID)
	return like, true, nil
}

// RemoveLike снимает лайк. Отсутствующий лайк — NotFound. Ранее
// отправленное уведомление о лайке не отзывается.
func (s *Service) RemoveLike(ctx context.Context, authorID, postID string) error {
	like, err := s.store.GetLikeByPostAndAuthor(ctx, postID, authorID)
	if err != nil {
		return notFound(err, "like not found")
	}

	if err := s.store.DeleteLikeByPostAndAuthor(ctx, postID, authorID); err != nil {
		return notFound(err, "like not found")
	}

	s.publish(domain.EventLikeDeleted, like.ID, postID, authorID)
	return nil
}

// CountLikes возвращает число лайков поста.
func (s *Service) CountLikes(ctx context.Context, postID string) (int, error) {
	return s.store.CountLikesByPostID(ctx, postID)
}

// notifyPostAuthor создает уведомление владельцу поста с именем
// действующего пользователя. Самому себе уведомления не шлются.
func (s *Service) notifyPostAuthor(ctx context.Context, post *domain.Post, actorID, template string) {
	if post.AuthorID == actorID {
		return
	}

	actor, err := s.store.GetUserByID(ctx, actorID)
	if err != nil {
		return
	}
	_, err = s.store.CreateNotification(ctx, &domain.Notification{
		RecipientID: post.AuthorID,
		Message:     fmt.Sprintf(template, actor.Username),
	})
	_ = err // уведомление — побочный эффект, мутацию оно не проваливает
}
