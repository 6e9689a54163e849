// Package security provides password hashing and session tokens.
package security

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrMismatch is returned by Compare when the password does not match.
var ErrMismatch = errors.New("password mismatch")

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}

// BcryptHasher bounds concurrent bcrypt work so a burst of logins cannot
// saturate every core.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher returns a hasher using cost, running at most concurrency
// hash operations at once.
func NewBcryptHasher(cost, concurrency int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BcryptHasher{cost: cost, sem: semaphore.NewWeighted(int64(concurrency))}
}

// Hash returns the bcrypt hash of password.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare returns ErrMismatch when password does not match hash.
func (h *BcryptHasher) Compare(ctx context.Context, hash, password string) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
