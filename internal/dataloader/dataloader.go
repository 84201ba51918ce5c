package dataloader

import (
	"context"
	"time"

	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/storage"
	"github.com/graph-gophers/dataloader"
)

// Loaders содержит батч-лоадеры, которыми Feed Composer собирает ленту:
// комментарии, счётчики лайков и авторы загружаются по одному запросу
// к хранилищу на всю пачку постов вместо N+1.
type Loaders struct {
	CommentsByPostID  *dataloader.Loader
	LikeCountByPostID *dataloader.Loader
	UserByID          *dataloader.Loader
}

// New создает лоадеры поверх хранилища. Лоадеры кешируют результаты,
// поэтому экземпляр живет не дольше одной сборки ленты.
func New(store storage.Storage) *Loaders {
	wait := dataloader.WithWait(time.Millisecond * 1)

	commentsBatch := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		postIDs := keysToStrings(keys)

		commentsMap, err := store.GetCommentsByPostIDs(ctx, postIDs)
		if err != nil {
			return errorResults(keys, err)
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range postIDs {
			results[i] = &dataloader.Result{Data: commentsMap[id]}
		}
		return results
	}

	likeCountBatch := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		postIDs := keysToStrings(keys)

		counts, err := store.CountLikesByPostIDs(ctx, postIDs)
		if err != nil {
			return errorResults(keys, err)
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range postIDs {
			results[i] = &dataloader.Result{Data: counts[id]}
		}
		return results
	}

	userBatch := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		userIDs := keysToStrings(keys)

		users, err := store.GetUsersByIDs(ctx, userIDs)
		if err != nil {
			return errorResults(keys, err)
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range userIDs {
			// Отсутствующий автор — не ошибка всей пачки: поле останется пустым
			var u *domain.User
			if found, ok := users[id]; ok {
				u = found
			}
			results[i] = &dataloader.Result{Data: u}
		}
		return results
	}

	return &Loaders{
		CommentsByPostID:  dataloader.NewBatchedLoader(commentsBatch, wait),
		LikeCountByPostID: dataloader.NewBatchedLoader(likeCountBatch, wait),
		UserByID:          dataloader.NewBatchedLoader(userBatch, wait),
	}
}

func keysToStrings(keys dataloader.Keys) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = key.String()
	}
	return out
}

func errorResults(keys dataloader.Keys, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, len(keys))
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}
