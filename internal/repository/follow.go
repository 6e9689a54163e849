package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for the follower graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowingAmong(ctx context.Context, followerID uint, candidateIDs []uint) (map[uint]bool, error)
	ListFollowers(ctx context.Context, userID uint, page models.PageRequest) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID uint, page models.PageRequest) ([]models.UserSummary, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	Suggest(ctx context.Context, userID uint, limit int) ([]models.UserSummary, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle removes the edge if present, otherwise inserts it. It returns true
// when the caller now follows the target.
func (r *followRepository) Toggle(ctx context.Context, followerID, followingID uint) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}

		edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
			return err
		}
		following = true
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return following, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// FollowingAmong returns the subset of candidateIDs that followerID follows,
// in one query.
func (r *followRepository) FollowingAmong(ctx context.Context, followerID uint, candidateIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return set, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, candidateIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, page models.PageRequest) ([]models.UserSummary, error) {
	return r.listEdge(ctx, "followers.follower_id", "followers.following_id", userID, page)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, page models.PageRequest) ([]models.UserSummary, error) {
	return r.listEdge(ctx, "followers.following_id", "followers.follower_id", userID, page)
}

// listEdge lists users on the joinCol side of edges whose filterCol is userID,
// ordered by username so pages are stable.
func (r *followRepository) listEdge(ctx context.Context, joinCol, filterCol string, userID uint, page models.PageRequest) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.WithContext(ctx).
		Table("users").
		Select(userSummaryColumns).
		Joins("JOIN followers ON "+joinCol+" = users.id").
		Where(filterCol+" = ?", userID).
		Order("users.username ASC, users.id ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "following_id = ?", userID)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "follower_id = ?", userID)
}

func (r *followRepository) count(ctx context.Context, query string, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where(query, userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Suggest picks random users that userID neither is nor follows.
func (r *followRepository) Suggest(ctx context.Context, userID uint, limit int) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	followed := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)
	err := r.db.WithContext(ctx).
		Table("users").
		Select(userSummaryColumns).
		Where("users.id <> ? AND users.id NOT IN (?)", userID, followed).
		Order("RANDOM()").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
