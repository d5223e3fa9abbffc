package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// BookRequest is the body accepted by create and update.
// Genre is only honoured on create.
type BookRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Genre       string           `json:"genre"`
}

func (r BookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Length(0, 4000)),
		validation.Field(&r.Price, validation.NotNil, validation.By(nonNegativeDecimal), validation.By(boundedDecimal)),
		validation.Field(&r.Genre, validation.Length(0, 100)),
	)
}

func nonNegativeDecimal(value interface{}) error {
	p, _ := value.(*decimal.Decimal)
	if p == nil {
		return nil
	}
	if p.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func boundedDecimal(value interface{}) error {
	p, _ := value.(*decimal.Decimal)
	if p == nil {
		return nil
	}
	if CheckPrice(*p) != nil {
		return errors.New("must have at most 34 significant digits and 28 decimal places")
	}
	return nil
}

// ToBook builds a new record from a create request. The store assigns the ID.
func (r BookRequest) ToBook(now time.Time) *Book {
	b := &Book{
		Name:        r.Name,
		Description: r.Description,
		Genre:       r.Genre,
		CreatedAt:   now.UTC(),
	}
	if r.Price != nil {
		b.Price = *r.Price
	}
	return b
}

// BookResponse is the representation returned to clients.
type BookResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Genre       string          `json:"genre"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`
}

func ToBookResponse(b *Book) *BookResponse {
	return &BookResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		Genre:       b.Genre,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func ToBookResponses(books []Book) []BookResponse {
	result := make([]BookResponse, 0, len(books))
	for i := range books {
		result = append(result, *ToBookResponse(&books[i]))
	}
	return result
}
