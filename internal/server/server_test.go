package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/config"
	"agora/internal/seed"
	"agora/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Count      *int            `json:"count"`
	Pagination *struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Pages int   `json:"pages"`
		Limit int   `json:"limit"`
	} `json:"pagination"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                   "0",
		Env:                    "test",
		JWTSecret:              "test-secret",
		JWTExpireHours:         1,
		RateLimitMax:           1000,
		RateLimitWindowMinutes: 15,
		ResetTokenTTLMinutes:   30,
		ResetURLBase:           "https://agora.test/reset",
		BcryptCost:             bcrypt.MinCost,
		HashConcurrency:        2,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	mr, rdb := testutil.NewTestRedis(t)

	s, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	return &testServer{app: s.App(), db: db, mr: mr}
}

func (ts *testServer) loadSocial(t *testing.T) *seed.Loaded {
	t.Helper()
	loaded, err := seed.LoadFixtureFile(ts.db, "../seed/testdata/social.yaml")
	require.NoError(t, err)
	return loaded
}

// do sends a JSON request and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, env.Error)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
