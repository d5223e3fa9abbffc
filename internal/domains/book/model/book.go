package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalogue record as held by the document store.
type Book struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Genre       string          `json:"genre"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// ApplyUpdate overwrites the mutable fields and stamps UpdatedAt.
// ID, Genre and CreatedAt are left as they were.
func (b *Book) ApplyUpdate(req BookRequest, now time.Time) {
	b.Name = req.Name
	b.Description = req.Description
	if req.Price != nil {
		b.Price = *req.Price
	}
	t := now.UTC()
	b.UpdatedAt = &t
}
