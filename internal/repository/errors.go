// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"agora/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// uniqueViolationField reports which column a unique violation hit. It
// understands PostgreSQL (SQLSTATE 23505 + constraint name) and SQLite
// ("UNIQUE constraint failed: users.email").
func uniqueViolationField(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return fieldFromConstraint(pgErr.ConstraintName + " " + pgErr.Detail), true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key") {
		return fieldFromConstraint(msg), true
	}
	return "", false
}

func fieldFromConstraint(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "email"):
		return "email"
	case strings.Contains(s, "username"):
		return "username"
	default:
		return ""
	}
}

func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching term anywhere,
// with LIKE metacharacters in term taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) sql() string {
	if o == SortDesc {
		return "DESC"
	}
	return "ASC"
}

const userSummaryColumns = "users.id, users.username, users.profile_picture, users.bio"
