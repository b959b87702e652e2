package api

import (
	"net/http"
	"strconv"
)

// ParsePage reads the zero-based page index from the query string. The page
// size itself is fixed (listquery.PageSize).
func ParsePage(r *http.Request) int {
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}
