package model

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

func TestBookFilter_Mode(t *testing.T) {
	tests := []struct {
		name   string
		filter BookFilter
		want   FilterMode
	}{
		{"price range only", BookFilter{MinPrice: dec("10"), MaxPrice: dec("20")}, FilterModePriceRange},
		{"text only", BookFilter{Query: str("dune")}, FilterModeText},
		{"text and price", BookFilter{Query: str("dune"), MinPrice: dec("1"), MaxPrice: dec("2")}, FilterModeTextAndPrice},
		{"nothing", BookFilter{}, FilterModeNone},
		{"min only", BookFilter{MinPrice: dec("1")}, FilterModeNone},
		{"max only", BookFilter{MaxPrice: dec("1")}, FilterModeNone},
		{"text and min only", BookFilter{Query: str("x"), MinPrice: dec("1")}, FilterModeNone},
		{"text and max only", BookFilter{Query: str("x"), MaxPrice: dec("1")}, FilterModeNone},
		{"empty text with range", BookFilter{Query: str(""), MinPrice: dec("1"), MaxPrice: dec("2")}, FilterModePriceRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Mode())
		})
	}
}

func TestParseBookFilter(t *testing.T) {
	f, err := ParseBookFilter("  tolkien ", "10.50", "20")
	require.NoError(t, err)
	require.NotNil(t, f.Query)
	assert.Equal(t, "tolkien", *f.Query)
	assert.True(t, f.MinPrice.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, f.MaxPrice.Equal(decimal.NewFromInt(20)))

	f, err = ParseBookFilter("   ", "", "")
	require.NoError(t, err)
	assert.Nil(t, f.Query)
	assert.Equal(t, FilterModeNone, f.Mode())

	_, err = ParseBookFilter("", "cheap", "")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ParseBookFilter("", "", "12.3.4")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ParseBookFilter("", "1e200000000", "2")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ParseBookFilter("", "0", "0.1234567890123456789012345678901234567")
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCheckPrice(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"19.99", false},
		{"-5", false},
		{"1e28", false},
		{"1e-28", false},
		{"9999999999999999999999999999999999", false},
		{"1e29", true},
		{"1e-29", true},
		{"1e200000000", true},
		{"1e-200000000", true},
		{"12345678901234567890123456789012345", true},
		{"-12345678901234567890123456789012345", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := CheckPrice(decimal.RequireFromString(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParsePageRequest(t *testing.T) {
	req, err := ParsePageRequest("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPageRequest(), req)

	req, err = ParsePageRequest("2", "10", "desc", "price")
	require.NoError(t, err)
	assert.Equal(t, PageRequest{Page: 2, Size: 10, OrderBy: "price", Direction: DirectionDesc}, req)
	assert.Equal(t, int64(20), req.Offset())
	assert.True(t, req.Descending())

	tests := []struct {
		name                      string
		page, lines, dir, orderBy string
		wantErr                   error
	}{
		{"negative page", "-1", "", "", "", ErrInvalidPage},
		{"non numeric page", "x", "", "", "", ErrInvalidPage},
		{"zero size", "", "0", "", "", ErrInvalidPageSize},
		{"size too large", "", "101", "", "", ErrInvalidPageSize},
		{"bad direction", "", "", "sideways", "", ErrInvalidDirection},
		{"bad order field", "", "", "", "password", ErrInvalidOrderBy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePageRequest(tt.page, tt.lines, tt.dir, tt.orderBy)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewPage(t *testing.T) {
	req := PageRequest{Page: 1, Size: 2, OrderBy: "name", Direction: DirectionAsc}
	books := []Book{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	p := NewPage(books, 5, req)
	assert.Len(t, p.Content, 2)
	assert.Equal(t, int64(5), p.TotalElements)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 1, p.Number)
	assert.False(t, p.First)
	assert.False(t, p.Last)
	assert.False(t, p.Empty)
	assert.Equal(t, SortInfo{OrderBy: "name", Direction: DirectionAsc}, p.Sort)

	last := NewPage(books[:1], 5, PageRequest{Page: 2, Size: 2, OrderBy: "id", Direction: DirectionAsc})
	assert.True(t, last.Last)
}

func TestEmptyPage(t *testing.T) {
	p := EmptyPage(DefaultPageRequest())
	assert.NotNil(t, p.Content)
	assert.Empty(t, p.Content)
	assert.Equal(t, int64(0), p.TotalElements)
	assert.Equal(t, 0, p.TotalPages)
	assert.True(t, p.First)
	assert.True(t, p.Last)
	assert.True(t, p.Empty)
	assert.Equal(t, DefaultLinesPerPage, p.Size)
}

func TestBookRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     BookRequest
		wantErr bool
		field   string
	}{
		{"valid", BookRequest{Name: "Dune", Price: dec("9.99")}, false, ""},
		{"zero price", BookRequest{Name: "Free", Price: dec("0")}, false, ""},
		{"missing name", BookRequest{Price: dec("1")}, true, "name"},
		{"missing price", BookRequest{Name: "Dune"}, true, "price"},
		{"negative price", BookRequest{Name: "Dune", Price: dec("-0.01")}, true, "price"},
		{"huge exponent", BookRequest{Name: "Dune", Price: dec("1e200000000")}, true, "price"},
		{"too many digits", BookRequest{Name: "Dune", Price: dec("0.1234567890123456789012345678901234567")}, true, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs))
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestBookRequest_ToBookAndApplyUpdate(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	b := BookRequest{Name: "Dune", Description: "spice", Price: dec("10"), Genre: "sci-fi"}.ToBook(created)

	assert.Equal(t, "sci-fi", b.Genre)
	assert.Equal(t, time.UTC, b.CreatedAt.Location())
	assert.Nil(t, b.UpdatedAt)

	b.ID = "id-1"
	later := created.Add(time.Hour)
	b.ApplyUpdate(BookRequest{Name: "Dune Messiah", Description: "more spice", Price: dec("12"), Genre: "fantasy"}, later)

	assert.Equal(t, "id-1", b.ID)
	assert.Equal(t, "Dune Messiah", b.Name)
	assert.Equal(t, "more spice", b.Description)
	assert.True(t, b.Price.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "sci-fi", b.Genre)
	assert.True(t, b.CreatedAt.Equal(created))
	require.NotNil(t, b.UpdatedAt)
	assert.True(t, b.UpdatedAt.Equal(later))
}

func TestErrorMapping(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", ErrBookNotFound)
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(wrapped))
	assert.Equal(t, "BOOK_NOT_FOUND", ToErrorCode(wrapped))

	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(ErrInvalidOrderBy))
	assert.Equal(t, "INVALID_SORT", ToErrorCode(ErrInvalidDirection))
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(ErrInvalidPrice))

	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("boom")))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", ToErrorCode(errors.New("boom")))
}

func TestGenerateBookDetailCacheKey(t *testing.T) {
	assert.Equal(t, "books:detail:abc", GenerateBookDetailCacheKey("abc"))
}
