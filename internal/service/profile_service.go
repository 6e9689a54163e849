package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

const (
	DefaultSuggestionLimit = 5
	MaxSuggestionLimit     = 20
)

// ProfileService covers the follower graph and public profiles.
type ProfileService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewProfileService(users repository.UserRepository, follows repository.FollowRepository) *ProfileService {
	return &ProfileService{users: users, follows: follows}
}

// ToggleFollow follows targetID, or unfollows if already following. It
// reports whether followerID follows targetID afterwards.
func (s *ProfileService) ToggleFollow(ctx context.Context, followerID, targetID uint) (bool, error) {
	if followerID == targetID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return false, err
	}

	following, err := s.follows.Toggle(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}
	if following {
		observability.RecordSocialAction("follow")
	} else {
		observability.RecordSocialAction("unfollow")
	}
	return following, nil
}

func (s *ProfileService) ListFollowers(ctx context.Context, userID uint, page models.PageRequest) (*Page[models.UserSummary], error) {
	return s.listEdges(ctx, userID, page, s.follows.ListFollowers, s.follows.CountFollowers)
}

func (s *ProfileService) ListFollowing(ctx context.Context, userID uint, page models.PageRequest) (*Page[models.UserSummary], error) {
	return s.listEdges(ctx, userID, page, s.follows.ListFollowing, s.follows.CountFollowing)
}

func (s *ProfileService) listEdges(
	ctx context.Context,
	userID uint,
	page models.PageRequest,
	list func(context.Context, uint, models.PageRequest) ([]models.UserSummary, error),
	count func(context.Context, uint) (int64, error),
) (*Page[models.UserSummary], error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	total, err := count(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := list(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return newPage(users, page, total), nil
}

// SuggestUsers returns up to limit random users the caller does not follow.
func (s *ProfileService) SuggestUsers(ctx context.Context, userID uint, limit int) ([]models.UserSummary, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}
	return s.follows.Suggest(ctx, userID, limit)
}

// GetProfile returns userID's public profile as seen by viewerID. The
// embedded follower lists are capped at one maximum-size page.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, userID uint) (*models.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	firstPage := models.PageRequest{Page: 1, Limit: models.MaxPageLimit}
	profile := &models.PublicProfile{UserSummary: user.Summary(), CreatedAt: user.CreatedAt}
	if profile.FollowersCount, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}
	if profile.Followers, err = s.follows.ListFollowers(ctx, userID, firstPage); err != nil {
		return nil, err
	}
	if profile.Following, err = s.follows.ListFollowing(ctx, userID, firstPage); err != nil {
		return nil, err
	}
	if viewerID != userID {
		if profile.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (s *ProfileService) requireUser(ctx context.Context, userID uint) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}
