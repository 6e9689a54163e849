package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

// postPager runs a filtered post listing: count, page, then one batched
// comment lookup for the page.
type postPager struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func (p postPager) page(ctx context.Context, filter repository.PostFilter, sort repository.PostSort, req models.PageRequest) (*Page[*models.Post], error) {
	total, err := p.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	posts, err := p.posts.List(ctx, filter, sort, req)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	grouped, err := p.comments.ListByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		if c, ok := grouped[post.ID]; ok {
			post.Comments = c
		} else {
			post.Comments = []*models.Comment{}
		}
	}
	return newPage(posts, req, total), nil
}

// FeedService builds the home feed, the explore feed and profile timelines.
type FeedService struct {
	pager postPager
	users repository.UserRepository
}

func NewFeedService(posts repository.PostRepository, comments repository.CommentRepository, users repository.UserRepository) *FeedService {
	return &FeedService{pager: postPager{posts: posts, comments: comments}, users: users}
}

// GetFeed lists posts by userID and everyone they follow, newest first.
func (s *FeedService) GetFeed(ctx context.Context, userID uint, req models.PageRequest) (*Page[*models.Post], error) {
	return s.pager.page(ctx, repository.PostFilter{NetworkOf: userID}, repository.FeedSort, req)
}

// GetExplore lists posts from outside userID's network, most liked first.
func (s *FeedService) GetExplore(ctx context.Context, userID uint, req models.PageRequest) (*Page[*models.Post], error) {
	return s.pager.page(ctx, repository.PostFilter{OutsideNetworkOf: userID}, repository.ExploreSort, req)
}

// GetUserPosts lists one author's posts, newest first.
func (s *FeedService) GetUserPosts(ctx context.Context, authorID uint, req models.PageRequest) (*Page[*models.Post], error) {
	exists, err := s.users.Exists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", authorID)
	}
	return s.pager.page(ctx, repository.PostFilter{AuthorID: authorID}, repository.FeedSort, req)
}
