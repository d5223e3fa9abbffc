package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPage         = 0
	DefaultLinesPerPage = 24
	MaxLinesPerPage     = 100
	DefaultOrderBy      = "id"
	DirectionAsc        = "ASC"
	DirectionDesc       = "DESC"
)

// SortableFields lists the orderBy values clients may use.
var SortableFields = map[string]bool{
	"id":          true,
	"name":        true,
	"description": true,
	"price":       true,
	"genre":       true,
	"createdAt":   true,
	"updatedAt":   true,
}

// PageRequest is a zero-based page with a single sort key.
type PageRequest struct {
	Page      int
	Size      int
	OrderBy   string
	Direction string
}

func DefaultPageRequest() PageRequest {
	return PageRequest{
		Page:      DefaultPage,
		Size:      DefaultLinesPerPage,
		OrderBy:   DefaultOrderBy,
		Direction: DirectionAsc,
	}
}

// ParsePageRequest reads page, linesPerPage, direction and orderBy. Empty values take defaults.
func ParsePageRequest(page, linesPerPage, direction, orderBy string) (PageRequest, error) {
	req := DefaultPageRequest()

	if page != "" {
		p, err := strconv.Atoi(page)
		if err != nil {
			return PageRequest{}, fmt.Errorf("page %q: %w", page, ErrInvalidPage)
		}
		req.Page = p
	}

	if linesPerPage != "" {
		l, err := strconv.Atoi(linesPerPage)
		if err != nil {
			return PageRequest{}, fmt.Errorf("linesPerPage %q: %w", linesPerPage, ErrInvalidPageSize)
		}
		req.Size = l
	}

	if direction != "" {
		req.Direction = strings.ToUpper(direction)
	}
	if orderBy != "" {
		req.OrderBy = orderBy
	}

	if err := req.Validate(); err != nil {
		return PageRequest{}, err
	}
	return req, nil
}

func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return ErrInvalidPage
	}
	if p.Size < 1 || p.Size > MaxLinesPerPage {
		return ErrInvalidPageSize
	}
	if p.Direction != DirectionAsc && p.Direction != DirectionDesc {
		return ErrInvalidDirection
	}
	if !SortableFields[p.OrderBy] {
		return ErrInvalidOrderBy
	}
	return nil
}

func (p PageRequest) Offset() int64 {
	return int64(p.Page) * int64(p.Size)
}

func (p PageRequest) Descending() bool {
	return p.Direction == DirectionDesc
}

type SortInfo struct {
	OrderBy   string `json:"orderBy"`
	Direction string `json:"direction"`
}

// Page is one slice of a sorted result set.
type Page struct {
	Content       []BookResponse `json:"content"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Number        int            `json:"number"`
	Size          int            `json:"size"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
	Empty         bool           `json:"empty"`
	Sort          SortInfo       `json:"sort"`
}

func NewPage(books []Book, total int64, req PageRequest) *Page {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	content := ToBookResponses(books)
	return &Page{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        req.Page,
		Size:          req.Size,
		First:         req.Page == 0,
		Last:          req.Page+1 >= totalPages,
		Empty:         len(content) == 0,
		Sort:          SortInfo{OrderBy: req.OrderBy, Direction: req.Direction},
	}
}

// EmptyPage is returned when no search strategy applies.
func EmptyPage(req PageRequest) *Page {
	return NewPage(nil, 0, req)
}
