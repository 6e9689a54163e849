// Package service holds the application's business rules. Handlers call
// services; services call repositories.
package service

import (
	"agora/internal/models"
	"agora/internal/validation"
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T
	Pagination *models.Pagination
}

func newPage[T any](items []T, req models.PageRequest, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Pagination: models.NewPagination(req, total)}
}

func fieldError(field string, err error) error {
	if err == nil {
		return nil
	}
	return models.NewFieldValidationError(field, err.Error())
}

func validateImage(image string) error {
	if image == "" {
		return nil
	}
	return fieldError("image", validation.ValidateURL(image))
}
