// Package testutil provides shared test databases and fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
// Each call gets its own database; a single connection keeps it alive for
// the life of the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewTestRedis starts a miniredis server and returns a client for it.
func NewTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts a user named username with a placeholder password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts a post by author at createdAt.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, text string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{UserID: author.ID, Text: text, CreatedAt: createdAt.UTC(), UpdatedAt: createdAt.UTC()}
	require.NoError(t, db.Create(post).Error)
	return post
}

// Follow makes follower follow following.
func Follow(t testing.TB, db *gorm.DB, follower, following *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error)
}

// Like records a like of post by user.
func Like(t testing.TB, db *gorm.DB, user *models.User, post *models.Post) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error)
}

// Comment adds a comment by user on post at createdAt.
func Comment(t testing.TB, db *gorm.DB, user *models.User, post *models.Post, text string, createdAt time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: post.ID, UserID: user.ID, Text: text, CreatedAt: createdAt.UTC()}
	require.NoError(t, db.Create(c).Error)
	return c
}
