package shared

import (
	"net/http"
	"strconv"
)

// Pagination carries the limit/offset window for list endpoints. The
// audit trail and notification feeds are the only unbounded collections
// here, so callers pick defaults per endpoint.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset query parameters. Unparsable or
// out-of-range values fall back to the defaults instead of erroring, so a
// sloppy query still gets a sane first page.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()

	p := Pagination{Limit: defaultLimit}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}
