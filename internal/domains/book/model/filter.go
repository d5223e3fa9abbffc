package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FilterMode is the search strategy selected from which filter fields are present.
type FilterMode int

const (
	FilterModeNone FilterMode = iota
	FilterModePriceRange
	FilterModeText
	FilterModeTextAndPrice
)

func (m FilterMode) String() string {
	switch m {
	case FilterModePriceRange:
		return "price_range"
	case FilterModeText:
		return "text"
	case FilterModeTextAndPrice:
		return "text_and_price"
	default:
		return "none"
	}
}

// BookFilter holds the optional search inputs. Nil means absent.
type BookFilter struct {
	Query    *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// ParseBookFilter builds a filter from raw query parameters.
// Blank values are treated as absent; non-numeric or out-of-range prices yield ErrInvalidPrice.
func ParseBookFilter(query, minPrice, maxPrice string) (BookFilter, error) {
	var f BookFilter

	if q := strings.TrimSpace(query); q != "" {
		f.Query = &q
	}

	var err error
	if f.MinPrice, err = parseOptionalDecimal(minPrice); err != nil {
		return BookFilter{}, fmt.Errorf("min_price %q: %w", minPrice, ErrInvalidPrice)
	}
	if f.MaxPrice, err = parseOptionalDecimal(maxPrice); err != nil {
		return BookFilter{}, fmt.Errorf("max_price %q: %w", maxPrice, ErrInvalidPrice)
	}

	return f, nil
}

func parseOptionalDecimal(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	if err := CheckPrice(d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Mode picks the search strategy:
//
//	query absent,  both bounds -> price range
//	query present, no bounds   -> text
//	query present, both bounds -> text and price
//	anything else              -> none
func (f BookFilter) Mode() FilterMode {
	hasQuery := f.Query != nil && *f.Query != ""
	hasRange := f.MinPrice != nil && f.MaxPrice != nil
	noBounds := f.MinPrice == nil && f.MaxPrice == nil

	switch {
	case !hasQuery && hasRange:
		return FilterModePriceRange
	case hasQuery && noBounds:
		return FilterModeText
	case hasQuery && hasRange:
		return FilterModeTextAndPrice
	default:
		return FilterModeNone
	}
}
