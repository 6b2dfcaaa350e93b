package filter

import (
	"net/url"
	"strconv"

	"github.com/policydesk/backoffice/core"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Page is a validated pagination request.
type Page struct {
	Number int
	Limit  int
}

// PageFromQuery reads page and limit from the query. Page defaults to 1,
// limit to 50 with a hard cap of 500.
func PageFromQuery(values url.Values) (Page, error) {
	page := Page{Number: 1, Limit: defaultLimit}
	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Page{}, core.Validationf("invalid page '%s', expect a positive integer", v)
		}
		page.Number = n
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return Page{}, core.Validationf("invalid limit '%s', expect an integer between 1 and %d", v, maxLimit)
		}
		page.Limit = n
	}
	return page, nil
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
