package seed

import (
	"fmt"

	"agora/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	FollowsPerUser int
	MaxLikes       int
	MaxComments    int
	ShouldClean    bool
	Factory        SeedOptions
}

// DefaultOptions is a small but well-connected demo dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:       50,
		NumPosts:       200,
		FollowsPerUser: 8,
		MaxLikes:       10,
		MaxComments:    4,
	}
}

// Seed populates the database with a random social graph, posts and
// engagement.
func Seed(db *gorm.DB, opts Options) error {
	logProgress("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f, err := NewFactory(db, opts.Factory)
	if err != nil {
		return err
	}

	users, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	logProgress("✓ %d users created", len(users))
	if len(users) == 0 {
		return nil
	}

	for _, u := range users {
		if err := f.Follow(u, f.Pick(users, opts.FollowsPerUser)); err != nil {
			return fmt.Errorf("failed to create follows: %w", err)
		}
	}
	logProgress("✓ follower graph created")

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		posts = append(posts, f.BuildPost(users[i%len(users)]))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	logProgress("✓ %d posts created", len(posts))

	for _, p := range posts {
		if err := f.Engage(p, users, opts.MaxLikes, opts.MaxComments); err != nil {
			return fmt.Errorf("failed to create engagement: %w", err)
		}
	}

	logProgress("🎉 Database seeding completed successfully!")
	return nil
}

// ClearAll deletes every row, children first.
func ClearAll(db *gorm.DB) error {
	logProgress("🗑️  Clearing existing data...")
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"post_likes", "comments", "posts", "followers", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
