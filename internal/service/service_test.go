package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage/inmemory"

	"github.com/stretchr/testify/require"
)

// eventRecorder подменяет Change Broadcaster в тестах.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) Publish(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) byType(eventType string) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type testEnv struct {
	svc   *Service
	store *inmemory.Store
	rec   *eventRecorder
	now   time.Time
}

// newTestEnv собирает сервис поверх in-memory хранилища с управляемыми
// часами и фиксированным зерном ленты.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: inmemory.New(),
		rec:   &eventRecorder{},
		now:   time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	env.svc = New(env.store, env.rec,
		WithClock(func() time.Time { return env.now }),
		WithFeedSeed(42),
	)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.store.CreateUser(context.Background(), &domain.User{
		Username:     username,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return user
}

// createPostAt вставляет пост напрямую, минуя политику публикаций.
func (e *testEnv) createPostAt(t *testing.T, authorID string, at time.Time) *domain.Post {
	t.Helper()
	post, err := e.store.CreatePost(context.Background(), &domain.Post{
		AuthorID:  authorID,
		Content:   "post content",
		CreatedAt: at,
	})
	require.NoError(t, err)
	return post
}
