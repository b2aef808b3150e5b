package domain

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category,omitempty"`
	StockQuantity int             `json:"stockQuantity"`
	SKU           string          `json:"sku,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Tags          string          `json:"tags,omitempty"`
	Weight        decimal.Decimal `json:"weight"`
	Dimensions    string          `json:"dimensions,omitempty"`
	Active        bool            `json:"active"`
}

// Page mirrors the backend's paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

func NewPage[T any](all []T, page, size int) Page[T] {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	total := len(all)
	totalPages := (total + size - 1) / size
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]T, end-start)
	copy(content, all[start:end])
	return Page[T]{
		Content:       content,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		Number:        page,
		Size:          size,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}

// PageQuery carries optional paging parameters; nil fields are not sent.
type PageQuery struct {
	Page *int
	Size *int
}

func (q PageQuery) Values() url.Values {
	v := url.Values{}
	if q.Page != nil {
		v.Set("page", strconv.Itoa(*q.Page))
	}
	if q.Size != nil {
		v.Set("size", strconv.Itoa(*q.Size))
	}
	return v
}

type ProductQuery struct {
	PageQuery
	Search   string
	Category string
	SortBy   string
	SortDir  string
}

func (q ProductQuery) Values() url.Values {
	v := q.PageQuery.Values()
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortDir != "" {
		v.Set("sortDir", q.SortDir)
	}
	return v
}
