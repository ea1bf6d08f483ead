package api

// Pagination mirrors the meta.pagination object of list endpoints.
type Pagination struct {
	Total       int             `json:"total"`
	Count       int             `json:"count"`
	PerPage     int             `json:"per_page"`
	CurrentPage int             `json:"current_page"`
	TotalPages  int             `json:"total_pages"`
	Links       PaginationLinks `json:"links"`
}

// PaginationLinks holds the absolute URLs of the neighbouring pages.
type PaginationLinks struct {
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// HasNext reports whether a page follows the current one.
func (p *Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// NextPage returns the number of the following page, or 0 on the last page.
func (p *Pagination) NextPage() int {
	if !p.HasNext() {
		return 0
	}
	return p.CurrentPage + 1
}
