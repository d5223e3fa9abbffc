package service

import (
	"context"

	"bookshelf-api/internal/domains/book/model"
)

// ServiceInterface - book business logic
type ServiceInterface interface {
	ListBooks(ctx context.Context, page model.PageRequest) (*model.Page, error)
	SearchBooks(ctx context.Context, page model.PageRequest, filter model.BookFilter) (*model.Page, error)
	GetBook(ctx context.Context, id string) (*model.BookResponse, error)
	CreateBook(ctx context.Context, req model.BookRequest) (*model.BookResponse, error)
	UpdateBook(ctx context.Context, id string, req model.BookRequest) (*model.BookResponse, error)
	DeleteBook(ctx context.Context, id string) error
}
