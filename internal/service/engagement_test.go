package service

import (
	"context"
	"strings"
	"testing"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment_NotifiesPostAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPostAt(t, alice.ID, env.now)

	_, err := env.svc.AddComment(ctx, bob.ID, post.ID, "great post")
	require.NoError(t, err)

	notifications, err := env.store.GetNotificationsByRecipient(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "bob commented on your post", notifications[0].Message)

	assert.Len(t, env.rec.byType(domain.EventCommentCreated), 1)
}

func TestAddComment_NoSelfNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	post := env.createPostAt(t, alice.ID, env.now)

	_, err := env.svc.AddComment(ctx, alice.ID, post.ID, "my own post")
	require.NoError(t, err)

	notifications, err := env.store.GetNotificationsByRecipient(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestAddComment_DeletedPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPostAt(t, alice.ID, env.now)

	require.NoError(t, env.svc.DeletePost(ctx, alice.ID, post.ID))

	// Комментарий к удаленному посту — NotFound, запись не создается
	_, err := env.svc.AddComment(ctx, bob.ID, post.ID, "too late")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAddComment_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	post := env.createPostAt(t, alice.ID, env.now)

	_, err := env.svc.AddComment(ctx, alice.ID, post.ID, "   ")
	assert.True(t, apperr.Is(err, apperr.KindPolicyViolation))

	_, err = env.svc.AddComment(ctx, alice.ID, post.ID, strings.Repeat("a", 2001))
	assert.True(t, apperr.Is(err, apperr.KindPolicyViolation))
}

func TestEditComment_AuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPostAt(t, alice.ID, env.now)

	comment, err := env.svc.AddComment(ctx, bob.ID, post.ID, "original")
	require.NoError(t, err)

	// Даже владелец поста не может править чужой комментарий
	_, err = env.svc.EditComment(ctx, alice.ID, comment.ID, "overridden")
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	unchanged, err := env.store.GetCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", unchanged.Content)

	edited, err := env.svc.EditComment(ctx, bob.ID, comment.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Content)
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPostAt(t, alice.ID, env.now)

	comment, err := env.svc.AddComment(ctx, bob.ID, post.ID, "mine")
	require.NoError(t, err)

	err = env.svc.DeleteComment(ctx, alice.ID, comment.ID)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	require.NoError(t, env.svc.DeleteComment(ctx, bob.ID, comment.ID))

	_, err = env.store.GetCommentByID(ctx, comment.ID)
	assert.Error(t, err)
}

func TestToggleLike_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPostAt(t, alice.ID, env.now)

	first, created, err := env.svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := env.svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// Ровно один лайк, ровно одно уведомление, ровно одно событие
	count, err := env.svc.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	notifications, err := env.store.GetNotificationsByRecipient(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "bob liked your post", notifications[0].Message)

	assert.Len(t, env.rec.byType(domain.EventLikeCreated), 1)
}

func TestToggleLike_NoSelfNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	post := env.createPostAt(t, alice.ID, env.now)

	_, _, err := env.svc.ToggleLike(ctx, alice.ID, post.ID)
	require.NoError(t, err)

	notifications, err := env.store.GetNotificationsByRecipient(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestRemoveLike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPostAt(t, alice.ID, env.now)

	// Снятие несуществующего лайка — NotFound и никаких уведомлений
	err := env.svc.RemoveLike(ctx, bob.ID, post.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	notifications, err := env.store.GetNotificationsByRecipient(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	_, _, err = env.svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.RemoveLike(ctx, bob.ID, post.ID))

	count, err := env.svc.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Уведомление о лайке не отзывается
	notifications, err = env.store.GetNotificationsByRecipient(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestToggleLike_MissingPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.createUser(t, "bob")

	_, _, err := env.svc.ToggleLike(ctx, bob.ID, "no-such-post")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
