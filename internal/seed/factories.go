// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

// SeedOptions tunes the factory.
type SeedOptions struct {
	// RandSeed makes generated data reproducible when non-zero.
	RandSeed int64
	// MaxDays spreads created_at over the last MaxDays days.
	MaxDays int
	// SkipBcrypt stores a cheap hash; seeded users then cannot log in.
	SkipBcrypt bool
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db       *gorm.DB
	opts     SeedOptions
	faker    *gofakeit.Faker
	password string
	now      time.Time
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}

	password := "skip-bcrypt"
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		password = string(hashed)
	}

	return &Factory{
		db:       db,
		opts:     opts,
		faker:    gofakeit.New(seed),
		password: password,
		now:      time.Now().UTC(),
	}, nil
}

// BuildUser returns an unsaved user with fake profile data.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		Username:       fmt.Sprintf("%s_%d", sanitizeUsername(f.faker.Username()), f.faker.Number(100, 99999)),
		Email:          fmt.Sprintf("%s@%s", f.faker.UUID()[:12], f.faker.DomainName()),
		Password:       f.password,
		Bio:            truncate(f.faker.Sentence(12), 500),
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildPost returns an unsaved post by author created at a random time in
// the last MaxDays days.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	offset := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	post := &models.Post{
		UserID:    author.ID,
		Text:      truncate(f.faker.Sentence(f.faker.Number(5, 25)), 500),
		CreatedAt: f.now.Add(-offset),
	}
	post.UpdatedAt = post.CreatedAt
	if f.faker.Bool() {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreateUsers persists n generated users in one batch.
func (f *Factory) CreateUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, f.BuildUser())
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := f.db.CreateInBatches(users, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 200).Error
}

// Follow links follower to each of targets, skipping self and duplicates.
func (f *Factory) Follow(follower *models.User, targets []*models.User) error {
	edges := make([]models.Follow, 0, len(targets))
	for _, t := range targets {
		if t.ID == follower.ID {
			continue
		}
		edges = append(edges, models.Follow{FollowerID: follower.ID, FollowingID: t.ID})
	}
	if len(edges) == 0 {
		return nil
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
}

// Engage adds likes and comments to post from a random sample of users.
func (f *Factory) Engage(post *models.Post, users []*models.User, maxLikes, maxComments int) error {
	if len(users) == 0 {
		return nil
	}

	likes := make([]models.Like, 0, maxLikes)
	seen := make(map[uint]bool)
	for i := 0; i < f.faker.Number(0, maxLikes); i++ {
		u := users[f.faker.Number(0, len(users)-1)]
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		likes = append(likes, models.Like{PostID: post.ID, UserID: u.ID})
	}
	if len(likes) > 0 {
		if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&likes).Error; err != nil {
			return err
		}
	}

	n := f.faker.Number(0, maxComments)
	if n == 0 {
		return nil
	}
	comments := make([]models.Comment, 0, n)
	for i := 0; i < n; i++ {
		u := users[f.faker.Number(0, len(users)-1)]
		comments = append(comments, models.Comment{
			PostID:    post.ID,
			UserID:    u.ID,
			Text:      truncate(f.faker.Sentence(f.faker.Number(3, 15)), 300),
			CreatedAt: post.CreatedAt.Add(time.Duration(i+1) * time.Minute),
		})
	}
	return f.db.Create(&comments).Error
}

// Pick returns up to n distinct users from pool.
func (f *Factory) Pick(pool []*models.User, n int) []*models.User {
	if n >= len(pool) {
		return pool
	}
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	f.faker.ShuffleInts(idx)
	out := make([]*models.User, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func logProgress(format string, args ...interface{}) {
	log.Printf(format, args...)
}

func sanitizeUsername(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			out = append(out, r)
		}
	}
	if len(out) > 40 {
		out = out[:40]
	}
	if len(out) < 3 {
		return "user"
	}
	return string(out)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
