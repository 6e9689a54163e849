package seed

import (
	"os"
	"strings"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed_SmallDataset(t *testing.T) {
	db := testutil.NewTestDB(t)

	opts := Options{
		NumUsers:       6,
		NumPosts:       12,
		FollowsPerUser: 3,
		MaxLikes:       3,
		MaxComments:    2,
		Factory:        SeedOptions{RandSeed: 42, SkipBcrypt: true},
	}
	require.NoError(t, Seed(db, opts))

	var users, posts, selfFollows int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.EqualValues(t, 6, users)
	assert.EqualValues(t, 12, posts)
	assert.Zero(t, selfFollows)

	// Re-seeding with clean replaces the data.
	opts.ShouldClean = true
	opts.Factory.RandSeed = 7
	require.NoError(t, Seed(db, opts))
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 6, users)
}

func TestFactory_BuildUserIsValid(t *testing.T) {
	f, err := NewFactory(testutil.NewTestDB(t), SeedOptions{RandSeed: 1, SkipBcrypt: true})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		u := f.BuildUser()
		assert.GreaterOrEqual(t, len(u.Username), 3)
		assert.LessOrEqual(t, len(u.Username), 50)
		assert.Contains(t, u.Email, "@")
	}

	u := f.BuildUser(func(u *models.User) { u.Username = "fixed" })
	assert.Equal(t, "fixed", u.Username)
}

func TestFactory_HashesDefaultPassword(t *testing.T) {
	f, err := NewFactory(testutil.NewTestDB(t), SeedOptions{RandSeed: 1})
	require.NoError(t, err)

	u := f.BuildUser()
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))
}

func TestLoadFixtureFile(t *testing.T) {
	db := testutil.NewTestDB(t)

	loaded, err := LoadFixtureFile(db, "testdata/social.yaml")
	require.NoError(t, err)
	require.Len(t, loaded.Users, 3)
	require.Len(t, loaded.Posts, 5)

	alice := loaded.Users["alice"]
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.Password), []byte(DefaultPassword)))

	var likes int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", loaded.Posts["p3"].ID).Count(&likes).Error)
	assert.EqualValues(t, 2, likes)

	assert.True(t, loaded.Posts["p1"].CreatedAt.Before(loaded.Posts["p5"].CreatedAt))
}

func TestParseFixture_UnknownReference(t *testing.T) {
	fx, err := ParseFixture(strings.NewReader(`
users:
  - username: alice
follows:
  - {follower: alice, following: nobody}
`))
	require.NoError(t, err)

	_, err = LoadFixture(testutil.NewTestDB(t), fx)
	assert.ErrorContains(t, err, `unknown user "nobody"`)
}

func TestParseFixture_RejectsUnknownFields(t *testing.T) {
	_, err := ParseFixture(strings.NewReader("users:\n  - nickname: x\n"))
	assert.Error(t, err)
}

func TestLoadFixtureFile_Missing(t *testing.T) {
	_, err := LoadFixtureFile(testutil.NewTestDB(t), "testdata/nope.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
