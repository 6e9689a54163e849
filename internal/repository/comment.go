package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint, order SortOrder) ([]*models.Comment, error)
	ListByPostIDs(ctx context.Context, postIDs []uint) (map[uint][]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func commentDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select("comments.*, users.username AS author_username, users.profile_picture AS author_profile_picture").
		Joins("JOIN users ON users.id = comments.user_id")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Scopes(commentDetails).Where("comments.id = ?", id).Take(&comment).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	comment.HydrateAuthor()
	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// ListByPost returns every comment on postID ordered by creation time.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, order SortOrder) ([]*models.Comment, error) {
	dir := order.sql()
	comments := []*models.Comment{}
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Scopes(commentDetails).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at " + dir + ", comments.id " + dir).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range comments {
		c.HydrateAuthor()
	}
	return comments, nil
}

// ListByPostIDs loads the comments of many posts in one query, oldest first,
// grouped by post. An empty ID set issues no query.
func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []uint) (map[uint][]*models.Comment, error) {
	grouped := make(map[uint][]*models.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return grouped, nil
	}

	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Scopes(commentDetails).
		Where("comments.post_id IN ?", postIDs).
		Order("comments.created_at ASC, comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range comments {
		c.HydrateAuthor()
		grouped[c.PostID] = append(grouped[c.PostID], c)
	}
	return grouped, nil
}
