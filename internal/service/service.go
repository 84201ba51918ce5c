// Package service содержит предметную логику: политику публикаций,
// учет вовлеченности, сборку ленты, сообщения и уведомления.
// Хранилище и рассыльщик событий передаются как зависимости.
package service

import (
	"errors"
	"time"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"
)

// Broadcaster — то, куда сервис публикует события об изменениях.
// Публикация не должна блокировать и не может провалить мутацию.
type Broadcaster interface {
	Publish(ev domain.Event)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Publish(domain.Event) {}

// Service реализует предметные операции поверх Storage.
type Service struct {
	store       storage.Storage
	broadcaster Broadcaster

	// now и feedSeed подменяются в тестах: фиксированные часы
	// для суточных лимитов, фиксированное зерно для перемешивания ленты.
	now      func() time.Time
	feedSeed func() int64
}

// Option настраивает Service при создании.
type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFeedSeed фиксирует зерно перемешивания ленты. В проде зерно
// берется от time.Now().UnixNano() на каждую сборку.
func WithFeedSeed(seed int64) Option {
	return func(s *Service) { s.feedSeed = func() int64 { return seed } }
}

// New создает сервис. broadcaster может быть nil — тогда события
// никуда не рассылаются.
func New(store storage.Storage, broadcaster Broadcaster, opts ...Option) *Service {
	s := &Service{
		store:       store,
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
		feedSeed:    func() int64 { return time.Now().UnixNano() },
	}
	if s.broadcaster == nil {
		s.broadcaster = nopBroadcaster{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(eventType, entityID, postID, actorID string) {
	s.broadcaster.Publish(domain.Event{
		Type:      eventType,
		EntityID:  entityID,
		PostID:    postID,
		ActorID:   actorID,
		Timestamp: s.now(),
	})
}

// startOfDay возвращает начало календарных суток UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// notFound переводит storage.ErrNotFound в типизированный отказ,
// остальные ошибки возвращает как есть.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}
