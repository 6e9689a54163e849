package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchUsersEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.loadSocial(t)
	token := ts.login(t, "alice@example.com", "password123")

	for _, path := range []string{"/api/search/users?username=o", "/api/profiles/search?q=O"} {
		t.Run(path, func(t *testing.T) {
			status, env := ts.do(t, http.MethodGet, path, token, nil)
			require.Equal(t, http.StatusOK, status, env.Error)
			users := decode[[]summaryJSON](t, env.Data)
			assert.Equal(t, []string{"bob", "carol"}, names(users))
			assert.True(t, users[0].IsFollowing)
			assert.False(t, users[1].IsFollowing)
		})
	}

	status, env := ts.do(t, http.MethodGet, "/api/search/users", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please provide a search term", env.Error)
}

func TestSearchPostsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	loaded := ts.loadSocial(t)
	token := ts.login(t, "alice@example.com", "password123")

	status, env := ts.do(t, http.MethodGet, "/api/search/posts?keywords=golang&sortOrder=asc", token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, []string{loaded.Posts["p1"].Text, loaded.Posts["p2"].Text}, texts(decode[[]postJSON](t, env.Data)))

	status, env = ts.do(t, http.MethodGet, "/api/search/posts?hasMedia=true", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{loaded.Posts["p3"].Text}, texts(decode[[]postJSON](t, env.Data)))

	status, env = ts.do(t, http.MethodGet, "/api/search/posts?sortBy=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "sortBy", env.Field)

	status, env = ts.do(t, http.MethodGet, fmt.Sprintf("/api/search/posts?authorId=%d", loaded.Users["carol"].ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, *env.Count)

	for _, raw := range []string{"-3", "abc"} {
		status, env = ts.do(t, http.MethodGet, "/api/search/posts?authorId="+raw, token, nil)
		assert.Equal(t, http.StatusBadRequest, status, raw)
		assert.Equal(t, "VALIDATION_ERROR", env.Code)
		assert.Equal(t, "authorId", env.Field)
	}
}

func TestTrendingEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.loadSocial(t)
	token := ts.login(t, "alice@example.com", "password123")

	status, env := ts.do(t, http.MethodPost, "/api/posts", token, map[string]string{"text": "compost compost tips"})
	require.Equal(t, http.StatusCreated, status)

	status, env = ts.do(t, http.MethodGet, "/api/search/trending", token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	topics := decode[[]struct {
		Keyword string `json:"keyword"`
		Weight  int64  `json:"weight"`
	}](t, env.Data)
	require.NotEmpty(t, topics)
	assert.Equal(t, "compost", topics[0].Keyword)
	assert.EqualValues(t, 2, topics[0].Weight)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)

	resp, err := ts.app.Test(httptestRequest(http.MethodGet, "/health/ready"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.app.Test(httptestRequest(http.MethodGet, "/metrics"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}
