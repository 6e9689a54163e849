package service

import (
	"context"
	"strings"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
)

const trendingWindow = 24 * time.Hour

type SearchUsersInput struct {
	Term      string
	SortBy    string
	SortOrder string
	Page      models.PageRequest
}

type SearchPostsInput struct {
	Keywords  string
	AuthorID  uint
	HasMedia  bool
	SortBy    string
	SortOrder string
	Page      models.PageRequest
}

// SearchService answers user, post and trending-topic queries.
type SearchService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	posts   repository.PostRepository
	pager   postPager
	cache   *cache.Store
	now     func() time.Time
}

func NewSearchService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	store *cache.Store,
) *SearchService {
	return &SearchService{
		users:   users,
		follows: follows,
		posts:   posts,
		pager:   postPager{posts: posts, comments: comments},
		cache:   store,
		now:     time.Now,
	}
}

func parseSortOrder(raw string, fallback repository.SortOrder) (repository.SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return fallback, nil
	case "asc":
		return repository.SortAsc, nil
	case "desc":
		return repository.SortDesc, nil
	default:
		return "", models.NewFieldValidationError("sortOrder", "sortOrder must be asc or desc")
	}
}

// SearchUsers matches usernames containing the term, case-insensitively, and
// flags which results the caller follows.
func (s *SearchService) SearchUsers(ctx context.Context, callerID uint, in SearchUsersInput) (*Page[models.UserSearchResult], error) {
	term := strings.TrimSpace(in.Term)
	if term == "" {
		return nil, models.NewFieldValidationError("username", "Please provide a search term")
	}

	q := repository.UserSearch{Term: term, Sort: "username"}
	switch in.SortBy {
	case "", "username":
	case "created_at", "createdAt":
		q.Sort = "created_at"
	default:
		return nil, models.NewFieldValidationError("sortBy", "sortBy must be username or createdAt")
	}
	order, err := parseSortOrder(in.SortOrder, repository.SortAsc)
	if err != nil {
		return nil, err
	}
	q.Order = order

	total, err := s.users.CountSearch(ctx, q)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Search(ctx, q, in.Page)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	following, err := s.follows.FollowingAmong(ctx, callerID, ids)
	if err != nil {
		return nil, err
	}

	results := make([]models.UserSearchResult, 0, len(users))
	for i := range users {
		results = append(results, models.UserSearchResult{
			UserSummary: users[i].Summary(),
			CreatedAt:   users[i].CreatedAt,
			IsFollowing: following[users[i].ID],
		})
	}
	return newPage(results, in.Page, total), nil
}

// SearchPosts filters posts by keyword, author and media presence.
func (s *SearchService) SearchPosts(ctx context.Context, in SearchPostsInput) (*Page[*models.Post], error) {
	sort := repository.PostSort{Field: repository.PostSortCreated}
	switch in.SortBy {
	case "", "createdAt", "created_at":
	case "updatedAt", "updated_at":
		sort.Field = repository.PostSortUpdated
	case "likes":
		sort.Field = repository.PostSortLikes
	default:
		return nil, models.NewFieldValidationError("sortBy", "sortBy must be createdAt, updatedAt or likes")
	}
	order, err := parseSortOrder(in.SortOrder, repository.SortDesc)
	if err != nil {
		return nil, err
	}
	sort.Order = order

	filter := repository.PostFilter{
		Keywords: strings.TrimSpace(in.Keywords),
		AuthorID: in.AuthorID,
		HasMedia: in.HasMedia,
	}
	return s.pager.page(ctx, filter, sort, in.Page)
}

// TrendingTopics ranks words from the last day's posts. Results are cached
// for a minute.
func (s *SearchService) TrendingTopics(ctx context.Context) ([]models.Topic, error) {
	topics := []models.Topic{}
	err := s.cache.Aside(ctx, cache.TrendingKey, &topics, cache.TrendingTTL, func() error {
		snaps, err := s.posts.RecentSnapshots(ctx, s.now().UTC().Add(-trendingWindow))
		if err != nil {
			return err
		}
		topics = ComputeTrending(snaps, TrendingLimit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return topics, nil
}
