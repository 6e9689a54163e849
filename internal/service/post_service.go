package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

type PostInput struct {
	Text  string
	Image string
}

func (in PostInput) validate() error {
	if err := fieldError("text", validation.ValidateText("Post text", in.Text, validation.MaxPostLength)); err != nil {
		return err
	}
	return validateImage(in.Image)
}

// PostService owns posts, likes and comments.
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository) *PostService {
	return &PostService{posts: posts, comments: comments}
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	in.Image = strings.TrimSpace(in.Image)
	if err := in.validate(); err != nil {
		return nil, err
	}

	post := &models.Post{UserID: authorID, Text: in.Text, Image: in.Image}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordSocialAction("post")
	return s.GetPost(ctx, post.ID)
}

// GetPost returns a post with its author, like count and comments.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID, repository.SortAsc)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, postID, callerID uint, in PostInput) (*models.Post, error) {
	in.Image = strings.TrimSpace(in.Image)
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, postID, callerID, "Not authorized to update this post"); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, postID, in.Text, in.Image); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postID)
}

// DeletePost removes the post together with its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID uint) error {
	if err := s.requireOwner(ctx, postID, callerID, "Not authorized to delete this post"); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID)
}

func (s *PostService) requireOwner(ctx context.Context, postID, callerID uint, msg string) error {
	ownerID, err := s.posts.GetOwnerID(ctx, postID)
	if err != nil {
		return err
	}
	if ownerID != callerID {
		return models.NewForbiddenError(msg)
	}
	return nil
}

// ToggleLike likes or unlikes postID and returns the resulting likers.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (*models.LikeResult, error) {
	if _, err := s.posts.GetOwnerID(ctx, postID); err != nil {
		return nil, err
	}
	liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	likers, err := s.posts.Likers(ctx, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		observability.RecordSocialAction("like")
	} else {
		observability.RecordSocialAction("unlike")
	}
	return &models.LikeResult{Liked: liked, Likes: likers, Count: len(likers), PostID: postID}, nil
}

// AddComment comments on postID and returns all its comments, newest first.
func (s *PostService) AddComment(ctx context.Context, postID, userID uint, text string) ([]*models.Comment, error) {
	if err := fieldError("text", validation.ValidateText("Comment text", text, validation.MaxCommentLength)); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetOwnerID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordSocialAction("comment")
	return s.comments.ListByPost(ctx, postID, repository.SortDesc)
}

// DeleteComment removes the caller's comment and returns the rest, newest
// first.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, callerID uint) ([]*models.Comment, error) {
	if _, err := s.posts.GetOwnerID(ctx, postID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != callerID {
		return nil, models.NewForbiddenError("Not authorized to delete this comment")
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, repository.SortDesc)
}
