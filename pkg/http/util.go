package http

import (
	xutil "GigCredit/pkg/util"

	"github.com/labstack/echo/v4"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// PageBounds returns the [start, end) window of n rows selected by the
// offset and limit query params. A missing or non-positive limit selects
// everything from offset on.
func PageBounds(c echo.Context, n int) (start, end int) {
	start = ParseIntDefault(c.QueryParam("offset"), 0)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end = n
	if limit := ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && start+limit < n {
		end = start + limit
	}
	return start, end
}
