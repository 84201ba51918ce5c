package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_DailyLimitPerAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	_, err := env.svc.CreatePost(ctx, alice.ID, "first")
	require.NoError(t, err)

	_, err = env.svc.CreatePost(ctx, alice.ID, "second")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPolicyViolation))
	assert.Equal(t, "you have already posted today", err.Error())
}

func TestCreatePost_AllowedOnNextDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	_, err := env.svc.CreatePost(ctx, alice.ID, "today")
	require.NoError(t, err)

	env.now = env.now.Add(24 * time.Hour)
	_, err = env.svc.CreatePost(ctx, alice.ID, "tomorrow")
	assert.NoError(t, err)
}

func TestCreatePost_ServerDailyCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		user := env.createUser(t, fmt.Sprintf("user-%d", i))
		_, err := env.svc.CreatePost(ctx, user.ID, "content")
		require.NoError(t, err)
	}

	extra := env.createUser(t, "user-extra")
	_, err := env.svc.CreatePost(ctx, extra.ID, "one too many")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPolicyViolation))
	// Текст отличается от персонального лимита
	assert.Equal(t, "server daily post limit reached", err.Error())
}

func TestEditPost_AuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPostAt(t, alice.ID, env.now)

	_, err := env.svc.EditPost(ctx, bob.ID, post.ID, "hijacked")
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	updated, err := env.svc.EditPost(ctx, alice.ID, post.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestDeletePost_CascadeCompleteness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	post := env.createPostAt(t, alice.ID, env.now)

	for i := 0; i < 3; i++ {
		commenter := env.createUser(t, fmt.Sprintf("commenter-%d", i))
		_, err := env.svc.AddComment(ctx, commenter.ID, post.ID, "nice")
		require.NoError(t, err)
		_, _, err = env.svc.ToggleLike(ctx, commenter.ID, post.ID)
		require.NoError(t, err)
	}

	require.NoError(t, env.svc.DeletePost(ctx, alice.ID, post.ID))

	comments, err := env.store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "cascade must leave no orphan comments")

	likes, err := env.store.CountLikesByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, likes, "cascade must leave no orphan likes")

	assert.Len(t, env.rec.byType(domain.EventPostDeleted), 1)
}

func TestPruneExpiredPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	expired := env.createPostAt(t, alice.ID, env.now.Add(-24*time.Hour))
	fresh := env.createPostAt(t, bob.ID, env.now)

	_, err := env.svc.AddComment(ctx, bob.ID, expired.ID, "old comment")
	require.NoError(t, err)
	_, _, err = env.svc.ToggleLike(ctx, bob.ID, expired.ID)
	require.NoError(t, err)

	pruned, err := env.svc.PruneExpiredPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	_, err = env.store.GetPostByID(ctx, expired.ID)
	assert.Error(t, err)

	comments, err := env.store.GetCommentsByPostID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// Свежий пост остается
	_, err = env.store.GetPostByID(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestPruneExpiredPosts_KeepsTodayPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	// Полночь сегодняшнего дня — еще не "строго раньше сегодня"
	env.createPostAt(t, alice.ID, startOfDay(env.now))

	pruned, err := env.svc.PruneExpiredPosts(ctx)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}
