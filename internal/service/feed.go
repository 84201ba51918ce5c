package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	loaders "github.com/UkralStul/social-feed-service/internal/dataloader"
	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/graph-gophers/dataloader"
)

// ComposeFeed собирает ленту для зрителя: к каждому посту прикрепляются
// счётчик лайков, флаг "зритель уже лайкнул" и комментарии с именами
// авторов. Порядок:
//
//  1. Посты с лайками — по убыванию числа лайков, при равенстве
//     сохраняется исходный порядок выдачи (новые сверху).
//  2. Следом — посты без лайков в случайном порядке.
//  3. Если лайков нет ни у кого, вся лента — случайная перестановка.
//
// Перемешивание намеренно недетерминировано от чтения к чтению:
// зерно берется заново на каждую сборку (в тестах — фиксированное).
func (s *Service) ComposeFeed(ctx context.Context, viewerID string) ([]*domain.FeedItem, error) {
	posts, err := s.store.GetPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if len(posts) == 0 {
		return []*domain.FeedItem{}, nil
	}

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	ldrs := loaders.New(s.store)

	// Сначала ставим все загрузки, потом разрешаем: так лоадеры
	// склеивают их в один запрос к хранилищу на каждую коллекцию.
	type pendingItem struct {
		comments  dataloader.Thunk
		likeCount dataloader.Thunk
		author    dataloader.Thunk
	}
	pending := make([]pendingItem, len(posts))
	for i, p := range posts {
		pending[i] = pendingItem{
			comments:  ldrs.CommentsByPostID.Load(ctx, dataloader.StringKey(p.ID)),
			likeCount: ldrs.LikeCountByPostID.Load(ctx, dataloader.StringKey(p.ID)),
			author:    ldrs.UserByID.Load(ctx, dataloader.StringKey(p.AuthorID)),
		}
	}

	liked, err := s.store.GetLikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve viewer likes: %w", err)
	}

	items := make([]*domain.FeedItem, len(posts))
	var allComments []*domain.Comment
	for i, p := range posts {
		commentsVal, err := pending[i].comments()
		if err != nil {
			return nil, fmt.Errorf("failed to load comments: %w", err)
		}
		likeCountVal, err := pending[i].likeCount()
		if err != nil {
			return nil, fmt.Errorf("failed to load like count: %w", err)
		}
		authorVal, err := pending[i].author()
		if err != nil {
			return nil, fmt.Errorf("failed to load author: %w", err)
		}

		comments, _ := commentsVal.([]*domain.Comment)
		allComments = append(allComments, comments...)

		item := &domain.FeedItem{
			ID:            p.ID,
			AuthorID:      p.AuthorID,
			Content:       p.Content,
			CreatedAt:     p.CreatedAt,
			LikeCount:     likeCountVal.(int),
			LikedByViewer: liked[p.ID],
			Comments:      make([]*domain.FeedComment, len(comments)),
		}
		if author, ok := authorVal.(*domain.User); ok && author != nil {
			item.Author = author.Username
		}
		for j, c := range comments {
			item.Comments[j] = &domain.FeedComment{
				ID:        c.ID,
				AuthorID:  c.AuthorID,
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
			}
		}
		items[i] = item
	}

	// Вторая волна: имена авторов комментариев (одним батчем).
	if err := resolveCommentAuthors(ctx, ldrs, items, allComments); err != nil {
		return nil, err
	}

	return s.rank(items), nil
}

func resolveCommentAuthors(ctx context.Context, ldrs *loaders.Loaders, items []*domain.FeedItem, comments []*domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	thunks := make(map[string]dataloader.Thunk)
	for _, c := range comments {
		if _, ok := thunks[c.AuthorID]; !ok {
			thunks[c.AuthorID] = ldrs.UserByID.Load(ctx, dataloader.StringKey(c.AuthorID))
		}
	}

	usernames := make(map[string]string, len(thunks))
	for authorID, thunk := range thunks {
		val, err := thunk()
		if err != nil {
			return fmt.Errorf("failed to load comment author: %w", err)
		}
		if user, ok := val.(*domain.User); ok && user != nil {
			usernames[authorID] = user.Username
		}
	}

	for _, item := range items {
		for _, fc := range item.Comments {
			fc.Author = usernames[fc.AuthorID]
		}
	}
	return nil
}

// rank применяет политику порядка ленты к уже собранным элементам.
func (s *Service) rank(items []*domain.FeedItem) []*domain.FeedItem {
	var liked, unliked []*domain.FeedItem
	for _, item := range items {
		if item.LikeCount > 0 {
			liked = append(liked, item)
		} else {
			unliked = append(unliked, item)
		}
	}

	rng := rand.New(rand.NewSource(s.feedSeed()))

	if len(liked) == 0 {
		rng.Shuffle(len(unliked), func(i, j int) {
			unliked[i], unliked[j] = unliked[j], unliked[i]
		})
		return unliked
	}

	sort.SliceStable(liked, func(i, j int) bool {
		return liked[i].LikeCount > liked[j].LikeCount
	})
	rng.Shuffle(len(unliked), func(i, j int) {
		unliked[i], unliked[j] = unliked[j], unliked[i]
	})
	return append(liked, unliked...)
}
