package model

import (
	"errors"
	"net/http"
)

var (
	ErrBookNotFound = errors.New("book not found")

	// Paging / filter input
	ErrInvalidPage      = errors.New("page must be a non-negative integer")
	ErrInvalidPageSize  = errors.New("linesPerPage must be between 1 and 100")
	ErrInvalidDirection = errors.New("direction must be ASC or DESC")
	ErrInvalidOrderBy   = errors.New("orderBy is not a sortable field")
	ErrInvalidPrice     = errors.New("price must be a decimal with at most 34 significant digits and 28 decimal places")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return "BOOK_NOT_FOUND"
	case errors.Is(err, ErrInvalidPage), errors.Is(err, ErrInvalidPageSize):
		return "INVALID_PAGE"
	case errors.Is(err, ErrInvalidDirection), errors.Is(err, ErrInvalidOrderBy):
		return "INVALID_SORT"
	case errors.Is(err, ErrInvalidPrice):
		return "INVALID_PRICE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrInvalidPageSize),
		errors.Is(err, ErrInvalidDirection),
		errors.Is(err, ErrInvalidOrderBy),
		errors.Is(err, ErrInvalidPrice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
