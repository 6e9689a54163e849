package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewConflictError("email", "taken"), http.StatusBadRequest},
		{NewUnauthorizedError("no"), http.StatusUnauthorized},
		{NewForbiddenError("not yours"), http.StatusForbidden},
		{NewNotFoundError("Post", 7), http.StatusNotFound},
		{NewRateLimitedError("slow down"), http.StatusTooManyRequests},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
		})
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := NewConflictError("username", "Username already taken")
	got := AsAppError(errors.Join(errors.New("ctx"), wrapped))
	assert.Same(t, wrapped, got)

	plain := AsAppError(errors.New("db down"))
	assert.Equal(t, CodeInternal, plain.Code)
	assert.Equal(t, "Internal server error", plain.Message)
	assert.True(t, IsCode(wrapped, CodeConflict))
}

func TestErrorEnvelope_DetailsOnlyWhenRequested(t *testing.T) {
	err := NewInternalError(errors.New("connection refused"))

	env := ErrorEnvelope(err, false)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error", env.Error)
	assert.Empty(t, env.Details)

	env = ErrorEnvelope(err, true)
	assert.Equal(t, "connection refused", env.Details)
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		limit   int
		wantErr string
	}{
		{"defaults", 1, 10, ""},
		{"max limit", 3, 100, ""},
		{"zero page", 0, 10, "page"},
		{"zero limit", 1, 0, "limit"},
		{"limit too large", 1, 101, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewPageRequest(tt.page, tt.limit)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, (tt.page-1)*tt.limit, req.Offset())
				return
			}
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantErr, appErr.Field)
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		limit   int
		total   int64
		pages   int
		hasNext bool
		hasPrev bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"exact multiple", 1, 5, 10, 2, true, false},
		{"remainder", 2, 4, 9, 3, true, true},
		{"last page", 3, 4, 9, 3, false, true},
		{"beyond last page", 7, 4, 9, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(PageRequest{Page: tt.page, Limit: tt.limit}, tt.total)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.pages, p.Pages)
			assert.Equal(t, tt.hasNext, p.Next != nil)
			assert.Equal(t, tt.hasPrev, p.Prev != nil)
		})
	}
}
