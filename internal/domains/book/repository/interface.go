package repository

import (
	"context"

	"bookshelf-api/internal/domains/book/model"

	"github.com/shopspring/decimal"
)

// RepositoryInterface - data access for book documents.
// Paged finders return the requested slice and the total number of matches.
type RepositoryInterface interface {
	FindAll(ctx context.Context, page model.PageRequest) ([]model.Book, int64, error)
	// FindByPriceRange matches min < price < max.
	FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) ([]model.Book, int64, error)
	// FindByText matches name, description or genre, case-insensitively.
	FindByText(ctx context.Context, text string, page model.PageRequest) ([]model.Book, int64, error)
	// FindByTextAndPriceRange matches (name or description) and min < price < max.
	FindByTextAndPriceRange(ctx context.Context, text string, minPrice, maxPrice decimal.Decimal, page model.PageRequest) ([]model.Book, int64, error)

	FindByID(ctx context.Context, id string) (*model.Book, error)
	// Create inserts book and sets book.ID.
	Create(ctx context.Context, book *model.Book) error
	Update(ctx context.Context, book *model.Book) error
	DeleteByID(ctx context.Context, id string) error
}
