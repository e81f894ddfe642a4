package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsServer(origins ...string) *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderContentType, "X-Lender-ID"},
		ExposeHeaders: []string{"Retry-After"},
		MaxAge:        600,
	}))
	e.POST("/api/loans/apply", func(c echo.Context) error { return c.String(http.StatusCreated, "ok") })
	return e
}

func serve(e *echo.Echo, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/loans/apply", nil)
	if origin != "" {
		req.Header.Set(echo.HeaderOrigin, origin)
	}
	if preflight {
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflightForAllowedOrigin(t *testing.T) {
	rec := serve(corsServer("https://lenders.example"), http.MethodOptions, "https://lenders.example", true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://lenders.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET, POST", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, "Content-Type, X-Lender-ID", rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	e := corsServer("https://lenders.example")

	rec := serve(e, http.MethodOptions, "https://evil.example", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(e, http.MethodPost, "https://evil.example", false)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, echo.HeaderOrigin, rec.Header().Get(echo.HeaderVary))
}

func TestCORSWildcardExposesHeaders(t *testing.T) {
	rec := serve(corsServer("*"), http.MethodPost, "https://borrow.example", false)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "https://borrow.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "Retry-After", rec.Header().Get(echo.HeaderAccessControlExposeHeaders))

	rec = serve(corsServer("*"), http.MethodPost, "", false)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
