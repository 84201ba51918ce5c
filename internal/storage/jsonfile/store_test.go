package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(dir)
	require.NoError(t, err)

	user, err := store.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: "x"})
	require.NoError(t, err)
	post, err := store.CreatePost(ctx, &domain.Post{AuthorID: user.ID, Content: "hello"})
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: user.ID, Content: "hi"})
	require.NoError(t, err)
	_, err = store.CreateLike(ctx, &domain.Like{PostID: post.ID, AuthorID: user.ID})
	require.NoError(t, err)

	// Открываем тот же каталог заново — состояние должно подняться из файлов
	reopened, err := New(dir)
	require.NoError(t, err)

	gotUser, err := reopened.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)
	// Хеш пароля обязан пережить рестарт, иначе вход сломается
	assert.Equal(t, user.PasswordHash, gotUser.PasswordHash)

	gotPost, err := reopened.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", gotPost.Content)

	comments, err := reopened.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	count, err := reopened.CountLikesByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_CollectionsAreJSONArrays(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: "x"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0])
	assert.Contains(t, string(data), "passwordHash")
}

func TestStore_LikeUniqueness(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(dir)
	require.NoError(t, err)

	user, err := store.CreateUser(ctx, &domain.User{Username: "bob", PasswordHash: "x"})
	require.NoError(t, err)
	post, err := store.CreatePost(ctx, &domain.Post{AuthorID: user.ID, Content: "p"})
	require.NoError(t, err)

	_, err = store.CreateLike(ctx, &domain.Like{PostID: post.ID, AuthorID: user.ID})
	require.NoError(t, err)
	_, err = store.CreateLike(ctx, &domain.Like{PostID: post.ID, AuthorID: user.ID})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestStore_DeleteCascadeHelpers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(dir)
	require.NoError(t, err)

	user, err := store.CreateUser(ctx, &domain.User{Username: "carol", PasswordHash: "x"})
	require.NoError(t, err)
	post, err := store.CreatePost(ctx, &domain.Post{AuthorID: user.ID, Content: "p"})
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: user.ID, Content: "c"})
	require.NoError(t, err)
	_, err = store.CreateLike(ctx, &domain.Like{PostID: post.ID, AuthorID: user.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteCommentsByPostID(ctx, post.ID))
	require.NoError(t, store.DeleteLikesByPostID(ctx, post.ID))
	require.NoError(t, store.DeletePost(ctx, post.ID))

	comments, err := store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	count, err := store.CountLikesByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
