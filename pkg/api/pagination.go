package api

// Pagination describes the position of one page within a filtered
// listing. From and To are the 1-based inclusive bounds of the items
// shown on the current page; both are zero when the page is empty.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// NewPagination computes the metadata for the given page of a listing
// with total matching items. Pages out of range yield an empty window.
func NewPagination(total, perPage, page int) Pagination {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}

	lastPage := 1
	if total > 0 {
		lastPage = (total + perPage - 1) / perPage
	}

	p := Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}

	if total == 0 || page > lastPage {
		return p
	}

	p.From = (page-1)*perPage + 1
	p.To = page * perPage
	if p.To > total {
		p.To = total
	}
	return p
}

// HasMultiplePages reports whether pagination controls should be shown.
func (p Pagination) HasMultiplePages() bool {
	return p.LastPage > 1
}
