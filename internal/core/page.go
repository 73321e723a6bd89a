package core

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps Offset well inside int32 range.
	MaxPageNumber = 1_000_000
)

// PageRequest asks for a 0-based page of Size items.
type PageRequest struct {
	Number int
	Size   int
}

// Normalize clamps the request to valid bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

type Page[T any] struct {
	Items         []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
}

// NewPage assembles a page from the items of request p and the overall count.
func NewPage[T any](items []T, p PageRequest, total int64) Page[T] {
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:         items,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
