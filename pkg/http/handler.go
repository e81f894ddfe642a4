package http

import "github.com/labstack/echo/v4"

// Handler mounts a group of API routes. The credit, loan and lender
// handlers implement it, and so does the router that aggregates them.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// HandlerFunc adapts a plain function, such as a single health route, to Handler.
type HandlerFunc func(e *echo.Echo)

func (f HandlerFunc) RegisterRoutes(e *echo.Echo) { f(e) }
