package repository

import (
	"context"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	PostSortCreated = "created_at"
	PostSortUpdated = "updated_at"
	PostSortLikes   = "likes"
)

// PostFilter selects posts. The same filter drives both the page query and
// its count so totals always agree with the rows served.
type PostFilter struct {
	// NetworkOf keeps posts by the user and everyone they follow.
	NetworkOf uint
	// OutsideNetworkOf keeps posts by anyone else.
	OutsideNetworkOf uint
	AuthorID         uint
	Keywords         string
	HasMedia         bool
	CreatedSince     time.Time
}

// PostSort orders a listing. Ties always fall back to newest first.
type PostSort struct {
	Field string
	Order SortOrder
}

var (
	FeedSort    = PostSort{Field: PostSortCreated, Order: SortDesc}
	ExploreSort = PostSort{Field: PostSortLikes, Order: SortDesc}
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetOwnerID(ctx context.Context, id uint) (uint, error)
	Update(ctx context.Context, id uint, text, image string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter PostFilter, sort PostSort, page models.PageRequest) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	ToggleLike(ctx context.Context, postID, userID uint) (bool, error)
	Likers(ctx context.Context, postID uint) ([]models.UserSummary, error)
	RecentSnapshots(ctx context.Context, since time.Time) ([]models.PostSnapshot, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const likesCountExpr = "(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id)"

// withDetails selects the author columns and like count alongside each post.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select("posts.*, users.username AS author_username, users.profile_picture AS author_profile_picture, " +
			likesCountExpr + " AS likes_count").
		Joins("JOIN users ON users.id = posts.user_id")
}

func (f PostFilter) scope(db *gorm.DB) *gorm.DB {
	if f.NetworkOf != 0 {
		db = db.Where("(posts.user_id = ? OR posts.user_id IN (?))", f.NetworkOf, followingOf(db, f.NetworkOf))
	}
	if f.OutsideNetworkOf != 0 {
		db = db.Where("posts.user_id <> ? AND posts.user_id NOT IN (?)", f.OutsideNetworkOf, followingOf(db, f.OutsideNetworkOf))
	}
	if f.AuthorID != 0 {
		db = db.Where("posts.user_id = ?", f.AuthorID)
	}
	if f.Keywords != "" {
		db = db.Where(`LOWER(posts.text) LIKE ? ESCAPE '\'`, containsPattern(f.Keywords))
	}
	if f.HasMedia {
		db = db.Where("posts.image IS NOT NULL AND posts.image <> ''")
	}
	if !f.CreatedSince.IsZero() {
		db = db.Where("posts.created_at >= ?", f.CreatedSince.UTC())
	}
	return db
}

func followingOf(db *gorm.DB, userID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ?", userID)
}

func (s PostSort) orderBy() string {
	dir := s.Order.sql()
	switch s.Field {
	case PostSortLikes:
		return "likes_count " + dir + ", posts.created_at DESC, posts.id DESC"
	case PostSortUpdated:
		return "posts.updated_at " + dir + ", posts.id " + dir
	default:
		return "posts.created_at " + dir + ", posts.id " + dir
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(withDetails).Where("posts.id = ?", id).Take(&post).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	post.HydrateAuthor()
	return &post, nil
}

func (r *postRepository) GetOwnerID(ctx context.Context, id uint) (uint, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "user_id").Take(&post, id).Error; err != nil {
		return 0, notFoundOr(err, "Post", id)
	}
	return post.UserID, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, text, image string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"text": text, "image": image})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Delete removes a post with its likes and comments atomically.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "Post", id)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, sort PostSort, page models.PageRequest) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(withDetails, filter.scope).
		Order(sort.orderBy()).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		p.HydrateAuthor()
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// ToggleLike removes userID's like if present, otherwise adds it. It returns
// true when the post is now liked.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		like := models.Like{PostID: postID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

// Likers lists who liked postID in the order they liked it.
func (r *postRepository) Likers(ctx context.Context, postID uint) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.profile_picture").
		Joins("JOIN post_likes ON post_likes.user_id = users.id").
		Where("post_likes.post_id = ?", postID).
		Order("post_likes.created_at ASC, users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// RecentSnapshots returns the text and like count of every post created at or
// after since.
func (r *postRepository) RecentSnapshots(ctx context.Context, since time.Time) ([]models.PostSnapshot, error) {
	snaps := []models.PostSnapshot{}
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.text AS text, "+likesCountExpr+" AS likes_count").
		Where("posts.created_at >= ?", since.UTC()).
		Scan(&snaps).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return snaps, nil
}
