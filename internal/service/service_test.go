package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/security"
	"agora/internal/seed"
	"agora/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []notifications.PasswordResetMessage
}

func (m *captureMailer) SendPasswordReset(_ context.Context, msg notifications.PasswordResetMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) last(t *testing.T) notifications.PasswordResetMessage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	store    *cache.Store
	mailer   *captureMailer
	tokens   *security.TokenManager
	users    repository.UserRepository
	follows  repository.FollowRepository
	posts    repository.PostRepository
	comments repository.CommentRepository

	auth    *AuthService
	profile *ProfileService
	post    *PostService
	feed    *FeedService
	search  *SearchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	mr, rdb := testutil.NewTestRedis(t)

	e := &testEnv{
		db:       db,
		mr:       mr,
		store:    cache.NewStore(rdb),
		mailer:   &captureMailer{},
		tokens:   security.NewTokenManager("test-secret", time.Hour),
		users:    repository.NewUserRepository(db),
		follows:  repository.NewFollowRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
	}
	hasher := security.NewBcryptHasher(bcrypt.MinCost, 2)
	e.auth = NewAuthService(e.users, e.follows, hasher, e.tokens, e.mailer, e.store, AuthConfig{
		ResetTokenTTL: 10 * time.Minute,
		ResetURLBase:  "https://agora.test/reset/",
	})
	e.profile = NewProfileService(e.users, e.follows)
	e.post = NewPostService(e.posts, e.comments)
	e.feed = NewFeedService(e.posts, e.comments, e.users)
	e.search = NewSearchService(e.users, e.follows, e.posts, e.comments, e.store)
	return e
}

// loadSocial loads the shared alice/bob/carol dataset.
func (e *testEnv) loadSocial(t *testing.T) *seed.Loaded {
	t.Helper()
	loaded, err := seed.LoadFixtureFile(e.db, "../seed/testdata/social.yaml")
	require.NoError(t, err)
	return loaded
}

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func page(t *testing.T, p, limit int) models.PageRequest {
	t.Helper()
	req, err := models.NewPageRequest(p, limit)
	require.NoError(t, err)
	return req
}

func postTexts(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Text)
	}
	return out
}

func keysOf(loaded *seed.Loaded, posts []*models.Post) []string {
	byID := make(map[uint]string, len(loaded.Posts))
	for k, p := range loaded.Posts {
		byID[p.ID] = k
	}
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, byID[p.ID])
	}
	return out
}

var errBoom = errors.New("boom")
