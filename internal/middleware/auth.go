package middleware

import (
	"context"
	"strings"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Authenticator resolves a bearer token to the id of an existing user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uint, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (uint, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (uint, error) {
	return f(ctx, token)
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success the user id is stored in c.Locals("userID") and in the request context.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return models.RespondWithAppError(c,
				models.NewUnauthorizedError("Not authorized, no token"))
		}

		userID, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		c.Locals("userID", userID)
		c.SetUserContext(WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by AuthRequired.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
