package model

import "fmt"

const bookDetailCachePrefix = "books:detail"

// GenerateBookDetailCacheKey builds the cache key for a single book.
func GenerateBookDetailCacheKey(bookID string) string {
	return fmt.Sprintf("%s:%s", bookDetailCachePrefix, bookID)
}
