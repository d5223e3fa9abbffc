package service

import (
	"context"
	"fmt"
	"time"

	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/domains/book/repository"
	"bookshelf-api/pkg/cache"

	"github.com/rs/zerolog/log"
)

// BookService - Implements ServiceInterface
type BookService struct {
	repo     repository.RepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
	guard    *fillGuard
	now      func() time.Time
}

// NewService - Constructor with DI
func NewService(repo repository.RepositoryInterface, cache cache.Cache, cacheTTL time.Duration) *BookService {
	return &BookService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		guard:    newFillGuard(),
		now:      time.Now,
	}
}

var _ ServiceInterface = (*BookService)(nil)

func (s *BookService) ListBooks(ctx context.Context, page model.PageRequest) (*model.Page, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	books, total, err := s.repo.FindAll(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return model.NewPage(books, total, page), nil
}

// SearchBooks dispatches on the filter mode. When no mode applies no query runs.
func (s *BookService) SearchBooks(ctx context.Context, page model.PageRequest, filter model.BookFilter) (*model.Page, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	var (
		books []model.Book
		total int64
		err   error
	)

	mode := filter.Mode()
	switch mode {
	case model.FilterModePriceRange:
		books, total, err = s.repo.FindByPriceRange(ctx, *filter.MinPrice, *filter.MaxPrice, page)
	case model.FilterModeText:
		books, total, err = s.repo.FindByText(ctx, *filter.Query, page)
	case model.FilterModeTextAndPrice:
		books, total, err = s.repo.FindByTextAndPriceRange(ctx, *filter.Query, *filter.MinPrice, *filter.MaxPrice, page)
	default:
		log.Debug().Msg("[BookService] Search without a usable filter, returning empty page")
		return model.EmptyPage(page), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to search books (%s): %w", mode, err)
	}
	return model.NewPage(books, total, page), nil
}

// GetBook reads through the cache. The fill is skipped when an update or
// delete of the same id lands while the store read is in flight.
func (s *BookService) GetBook(ctx context.Context, id string) (*model.BookResponse, error) {
	cacheKey := model.GenerateBookDetailCacheKey(id)

	var cached model.BookResponse
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("[BookService] Cache read failed")
	}
	if found {
		return &cached, nil
	}

	gen := s.guard.snapshot(id)
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := model.ToBookResponse(book)
	filled := s.guard.fill(id, gen, func() {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("[BookService] Cache write failed")
		}
	})
	if !filled {
		log.Debug().Str("key", cacheKey).Msg("[BookService] Skipped cache fill, book changed during read")
	}
	return resp, nil
}

func (s *BookService) CreateBook(ctx context.Context, req model.BookRequest) (*model.BookResponse, error) {
	book := req.ToBook(s.now())

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	log.Info().Str("book_id", book.ID).Msg("[BookService] Book created")
	return model.ToBookResponse(book), nil
}

// UpdateBook overwrites name, description and price. Genre, ID and CreatedAt are kept.
func (s *BookService) UpdateBook(ctx context.Context, id string, req model.BookRequest) (*model.BookResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.ApplyUpdate(req, s.now())

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	s.invalidate(ctx, id)
	return model.ToBookResponse(existing), nil
}

// DeleteBook checks existence first so a missing id reports not found.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	s.invalidate(ctx, id)
	log.Info().Str("book_id", id).Msg("[BookService] Book deleted")
	return nil
}

func (s *BookService) invalidate(ctx context.Context, id string) {
	cacheKey := model.GenerateBookDetailCacheKey(id)
	s.guard.invalidate(id, func() {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("[BookService] Failed to delete cache")
		}
	})
}
