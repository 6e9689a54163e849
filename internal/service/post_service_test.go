package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentTexts(comments []*models.Comment) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.Text)
	}
	return out
}

func TestPostService_CreatePost(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")

	post, err := e.post.CreatePost(ctx, alice.ID, PostInput{Text: "hello world", Image: " https://example.com/a.png "})
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, "https://example.com/a.png", post.Image)
	require.NotNil(t, post.Author)
	assert.Equal(t, "alice", post.Author.Username)
	assert.NotNil(t, post.Comments)
	assert.Zero(t, post.LikesCount)
}

func TestPostService_CreatePostValidation(t *testing.T) {
	e := newTestEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")

	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{"empty", PostInput{Text: "   "}, "text"},
		{"too long", PostInput{Text: strings.Repeat("a", 501)}, "text"},
		{"bad image", PostInput{Text: "ok", Image: "not a url"}, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.post.CreatePost(context.Background(), alice.ID, tt.in)
			appErr := assertCode(t, err, models.CodeValidation)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestPostService_UpdateAndDeleteOwnership(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	loaded := e.loadSocial(t)
	alice, bob := loaded.Users["alice"], loaded.Users["bob"]
	p1 := loaded.Posts["p1"]

	_, err := e.post.UpdatePost(ctx, p1.ID, bob.ID, PostInput{Text: "hijacked"})
	appErr := assertCode(t, err, models.CodeForbidden)
	assert.Equal(t, "Not authorized to update this post", appErr.Message)

	updated, err := e.post.UpdatePost(ctx, p1.ID, alice.ID, PostInput{Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	assert.Equal(t, []string{"nice", "agreed"}, commentTexts(updated.Comments))

	_, err = e.post.UpdatePost(ctx, 9999, alice.ID, PostInput{Text: "edited"})
	assertCode(t, err, models.CodeNotFound)

	err = e.post.DeletePost(ctx, p1.ID, bob.ID)
	appErr = assertCode(t, err, models.CodeForbidden)
	assert.Equal(t, "Not authorized to delete this post", appErr.Message)

	require.NoError(t, e.post.DeletePost(ctx, p1.ID, alice.ID))
	_, err = e.post.GetPost(ctx, p1.ID)
	assertCode(t, err, models.CodeNotFound)

	var orphans int64
	require.NoError(t, e.db.Model(&models.Comment{}).Where("post_id = ?", p1.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestPostService_ToggleLike(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	loaded := e.loadSocial(t)
	p1, carol := loaded.Posts["p1"], loaded.Users["carol"]

	res, err := e.post.ToggleLike(ctx, p1.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Likes, 1)
	assert.Equal(t, "carol", res.Likes[0].Username)

	res, err = e.post.ToggleLike(ctx, p1.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Empty(t, res.Likes)

	_, err = e.post.ToggleLike(ctx, 9999, carol.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_Comments(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	loaded := e.loadSocial(t)
	alice, bob := loaded.Users["alice"], loaded.Users["bob"]
	p1, p2 := loaded.Posts["p1"], loaded.Posts["p2"]

	comments, err := e.post.AddComment(ctx, p1.ID, alice.ID, "thanks all")
	require.NoError(t, err)
	assert.Equal(t, []string{"thanks all", "agreed", "nice"}, commentTexts(comments))
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "alice", comments[0].Author.Username)

	_, err = e.post.AddComment(ctx, p1.ID, alice.ID, "")
	assertCode(t, err, models.CodeValidation)
	_, err = e.post.AddComment(ctx, 9999, alice.ID, "hi")
	assertCode(t, err, models.CodeNotFound)

	mine := comments[0]
	_, err = e.post.DeleteComment(ctx, p1.ID, mine.ID, bob.ID)
	appErr := assertCode(t, err, models.CodeForbidden)
	assert.Equal(t, "Not authorized to delete this comment", appErr.Message)

	_, err = e.post.DeleteComment(ctx, p2.ID, mine.ID, alice.ID)
	assertCode(t, err, models.CodeNotFound)

	remaining, err := e.post.DeleteComment(ctx, p1.ID, mine.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"agreed", "nice"}, commentTexts(remaining))
}
