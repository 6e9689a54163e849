// Package notifications hands outbound messages to delivery collaborators.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"agora/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// OutboxKey is the Redis list a mail relay consumes from.
const OutboxKey = "mail:outbox"

// PasswordResetMessage is what a relay needs to send a reset email.
type PasswordResetMessage struct {
	Type      string    `json:"type"`
	To        string    `json:"to"`
	Username  string    `json:"username"`
	ResetURL  string    `json:"reset_url"`
	ExpiresAt time.Time `json:"expires_at"`
	QueuedAt  time.Time `json:"queued_at"`
}

// PasswordResetMailer delivers password reset links.
type PasswordResetMailer interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error
}

// ErrNoOutbox is returned when the outbox has no Redis client.
var ErrNoOutbox = errors.New("mail outbox unavailable")

// MailOutbox queues messages on a Redis list for an external relay.
type MailOutbox struct {
	rdb *redis.Client
	now func() time.Time
}

// NewMailOutbox creates a MailOutbox using the provided Redis client.
func NewMailOutbox(rdb *redis.Client) *MailOutbox {
	return &MailOutbox{rdb: rdb, now: time.Now}
}

// SendPasswordReset enqueues msg. Unlike most Redis use in the app this does
// not fail open: a reset link that was never queued must surface as an error.
func (o *MailOutbox) SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error {
	if o.rdb == nil {
		return ErrNoOutbox
	}
	msg.Type = "password_reset"
	msg.QueuedAt = o.now().UTC()

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return o.rdb.RPush(ctx, OutboxKey, payload).Err()
}

// LogMailer writes reset links to the structured log. It must not be used in
// production: the link contains the plaintext token.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error {
	middleware.Logger.InfoContext(ctx, "password reset link",
		slog.String("to", msg.To),
		slog.String("reset_url", msg.ResetURL),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}
