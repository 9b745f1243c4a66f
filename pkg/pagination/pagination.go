package pagination

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 20
	// MaxPerPage caps how many rows any list endpoint can request.
	MaxPerPage = 100
)

// Params holds offset pagination inputs from controllers.
type Params struct {
	Page    int
	PerPage int
}

// Meta is the pagination block returned alongside every list payload.
type Meta struct {
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// Page wraps a page of items with its pagination metadata.
type PageResult struct {
	Items      any  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// Normalize clamps page and per_page to their allowed ranges.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the row limit for the normalized params.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// BuildMeta derives the pagination block from the total row count.
func BuildMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := int((total + int64(n.PerPage) - 1) / int64(n.PerPage))
	return Meta{
		Page:    n.Page,
		Pages:   pages,
		PerPage: n.PerPage,
		Total:   total,
		HasNext: n.Page < pages,
		HasPrev: n.Page > 1 && total > 0,
	}
}

// NewPage bundles items with their metadata.
func NewPage(items any, p Params, total int64) *PageResult {
	return &PageResult{Items: items, Pagination: BuildMeta(p, total)}
}
