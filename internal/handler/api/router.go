package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"GigCredit/internal/middleware"
	"GigCredit/internal/service/ratelimit"
	xhttp "GigCredit/pkg/http"

	"github.com/labstack/echo/v4"
)

// HealthChecker is any dependency that can report its health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthFunc adapts a function to HealthChecker.
type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Health(ctx context.Context) error { return f(ctx) }

// Router mounts every API handler plus /healthz on one echo instance.
type Router struct {
	handlers []xhttp.Handler
	limiter  *ratelimit.Limiter
	checks   map[string]HealthChecker
}

var _ xhttp.Handler = (*Router)(nil)

func NewRouter(credit *CreditHandler, loans *LoanHandler, lender *LenderHandler, limiter *ratelimit.Limiter) *Router {
	return &Router{
		handlers: []xhttp.Handler{credit, loans, lender},
		limiter:  limiter,
		checks:   make(map[string]HealthChecker),
	}
}

// AddHealthCheck registers a named dependency reported by /healthz.
func (r *Router) AddHealthCheck(name string, hc HealthChecker) {
	if hc != nil {
		r.checks[name] = hc
	}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", r.Health)

	if r.limiter != nil {
		e.Use(middleware.RateLimit(r.limiter, "/api/"))
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}

// Health reports 200 when every registered dependency answers, 503 otherwise.
func (r *Router) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := r.checks[name].Health(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	return xhttp.DataResponse(c, status, map[string]interface{}{"dependencies": deps})
}
