package pagination

import "github.com/angelmondragon/foodlink-backend/pkg/types"

const (
	// DefaultPageSize is used when the client omits pageSize.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows a single page can request.
	MaxPageSize = 50
)

// Params holds 1-indexed page inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps the page to >= 1 and the page size to [1, MaxPageSize].
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PageSize
}

// TotalPages rounds total up to whole pages of size pageSize.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Meta builds the page metadata for a response.
func (p Params) Meta(total int64) types.PageMeta {
	n := p.Normalize()
	return types.PageMeta{
		Page:       n.Page,
		PageSize:   n.PageSize,
		Total:      total,
		TotalPages: TotalPages(total, n.PageSize),
	}
}
