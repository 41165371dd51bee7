package api

import (
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// parsePagination reads limit and offset. Missing or malformed values fall
// back to the defaults and limit is capped at maxPageLimit.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
