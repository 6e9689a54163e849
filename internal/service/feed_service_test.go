package service

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_GetFeed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	loaded := e.loadSocial(t)

	tests := []struct {
		user string
		want []string
	}{
		{"alice", []string{"p5", "p2", "p1"}},
		{"bob", []string{"p5", "p2"}},
		{"carol", []string{"p4", "p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			got, err := e.feed.GetFeed(ctx, loaded.Users[tt.user].ID, models.DefaultPage())
			require.NoError(t, err)
			assert.Equal(t, tt.want, keysOf(loaded, got.Items))
			assert.EqualValues(t, len(tt.want), got.Pagination.Total)
		})
	}
}

func TestFeedService_GetFeedPaginates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	loaded := e.loadSocial(t)
	alice := loaded.Users["alice"].ID

	first, err := e.feed.GetFeed(ctx, alice, page(t, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"p5", "p2"}, keysOf(loaded, first.Items))
	assert.Equal(t, &models.Pagination{
		Total: 3, Page: 1, Pages: 2, Limit: 2,
		Next: &models.PageRef{Page: 2, Limit: 2},
	}, first.Pagination)

	second, err := e.feed.GetFeed(ctx, alice, page(t, 2, 2))
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, keysOf(loaded, second.Items))
	assert.Equal(t, []string{"nice", "agreed"}, commentTexts(second.Items[0].Comments))
	assert.Equal(t, "alice", second.Items[0].Author.Username)

	beyond, err := e.feed.GetFeed(ctx, alice, page(t, 5, 2))
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.EqualValues(t, 3, beyond.Pagination.Total)
}

func TestFeedService_GetExplore(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	loaded := e.loadSocial(t)

	tests := []struct {
		user string
		want []string
	}{
		{"alice", []string{"p3", "p4"}},
		{"bob", []string{"p3", "p4", "p1"}},
		{"carol", []string{"p2", "p5", "p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			got, err := e.feed.GetExplore(ctx, loaded.Users[tt.user].ID, models.DefaultPage())
			require.NoError(t, err)
			assert.Equal(t, tt.want, keysOf(loaded, got.Items))
			assert.EqualValues(t, len(tt.want), got.Pagination.Total)
		})
	}

	got, err := e.feed.GetExplore(ctx, loaded.Users["alice"].ID, models.DefaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Items[0].LikesCount)
}

func TestFeedService_GetUserPosts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	loaded := e.loadSocial(t)

	got, err := e.feed.GetUserPosts(ctx, loaded.Users["carol"].ID, models.DefaultPage())
	require.NoError(t, err)
	assert.Equal(t, []string{"p4", "p3"}, keysOf(loaded, got.Items))

	_, err = e.feed.GetUserPosts(ctx, 9999, models.DefaultPage())
	assertCode(t, err, models.CodeNotFound)
}
