package models

// Page is a 1-based pagination window.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"pageSize"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Skip is the number of documents before this page.
func (p Page) Skip() int64 {
	p = p.Normalize()
	return int64((p.Number - 1) * p.Size)
}

// Limit is the page size as int64 for driver options.
func (p Page) Limit() int64 {
	return int64(p.Normalize().Size)
}
