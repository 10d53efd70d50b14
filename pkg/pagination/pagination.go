package pagination

import (
	"net/url"
	"strconv"
)

// Params holds the page selection sent with a listing query.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page,omitempty"`
}

// Normalize clamps page to >= 1 and drops an out-of-range page size.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 0 || p.PerPage > 100 {
		p.PerPage = 0
	}
	return p
}

// Encode writes the parameters into q. A zero PerPage is left to the server.
func (p Params) Encode(q url.Values) {
	p = p.Normalize()
	q.Set("page", strconv.Itoa(p.Page))
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
}

// TotalPages normalizes a page count reported by the server. A listing always
// has at least one page, so zero or negative counts become 1.
func TotalPages(reported int) int {
	if reported < 1 {
		return 1
	}
	return reported
}
