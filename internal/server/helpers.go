package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

var errInvalidBody = models.NewValidationError("Invalid request body")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "commentId" -> "Invalid comment ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.respondError(c, models.NewFieldValidationError(param, "Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewFieldValidationError(key, fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}

// parsePage reads ?page= and ?limit=, rejecting out-of-range values.
func parsePage(c *fiber.Ctx) (models.PageRequest, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return models.PageRequest{}, err
	}
	limit, err := queryInt(c, "limit", models.DefaultPageLimit)
	if err != nil {
		return models.PageRequest{}, err
	}
	return models.NewPageRequest(page, limit)
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

// respondError writes err as an error envelope. Wrapped causes are exposed
// outside production only.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", appErr.Error()),
		)
	}
	return c.Status(appErr.StatusCode()).JSON(models.ErrorEnvelope(appErr, !s.config.IsProduction()))
}

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(models.Envelope{Success: true, Data: data})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(models.Envelope{Success: true, Message: message})
}

func respondList[T any](c *fiber.Ctx, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(models.Envelope{Success: true, Data: items, Count: &n})
}

func respondPage[T any](c *fiber.Ctx, page *service.Page[T]) error {
	n := len(page.Items)
	return c.JSON(models.Envelope{
		Success:    true,
		Data:       page.Items,
		Count:      &n,
		Pagination: page.Pagination,
	})
}
