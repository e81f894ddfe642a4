package middleware

import (
	"strings"

	"GigCredit/internal/domain/models"
	"GigCredit/internal/service/ratelimit"
	xhttp "GigCredit/pkg/http"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID      = "X-User-ID"
	HeaderLenderID    = "X-Lender-ID"
	HeaderLenderName  = "X-Lender-Name"
	HeaderLenderOrg   = "X-Lender-Org"
	ctxKeyBorrowerID  = "gigcredit.borrower_id"
	ctxKeyLender      = "gigcredit.lender"
	defaultLenderName = "Lender"
)

// RequireBorrower rejects requests without an X-User-ID header.
func RequireBorrower() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if id == "" {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("missing "+HeaderUserID+" header"))
			}
			c.Set(ctxKeyBorrowerID, id)
			return next(c)
		}
	}
}

// RequireLender rejects requests without an X-Lender-ID header.
func RequireLender() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			id := strings.TrimSpace(h.Get(HeaderLenderID))
			if id == "" {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("missing "+HeaderLenderID+" header"))
			}
			name := strings.TrimSpace(h.Get(HeaderLenderName))
			if name == "" {
				name = defaultLenderName
			}
			c.Set(ctxKeyLender, models.Lender{
				ID:           id,
				Name:         name,
				Organization: strings.TrimSpace(h.Get(HeaderLenderOrg)),
			})
			return next(c)
		}
	}
}

// BorrowerID returns the id set by RequireBorrower.
func BorrowerID(c echo.Context) string {
	id, _ := c.Get(ctxKeyBorrowerID).(string)
	return id
}

// LenderFrom returns the lender set by RequireLender.
func LenderFrom(c echo.Context) models.Lender {
	l, _ := c.Get(ctxKeyLender).(models.Lender)
	return l
}

// RateLimit applies a token bucket per caller to request paths under prefix.
// Callers are keyed by their identity header, falling back to the client IP.
func RateLimit(l *ratelimit.Limiter, prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, prefix) {
				return next(c)
			}
			if !l.Allow(callerKey(c)) {
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
			}
			return next(c)
		}
	}
}

func callerKey(c echo.Context) string {
	h := c.Request().Header
	if id := h.Get(HeaderLenderID); id != "" {
		return "lender:" + id
	}
	if id := h.Get(HeaderUserID); id != "" {
		return "user:" + id
	}
	return "ip:" + c.RealIP()
}
