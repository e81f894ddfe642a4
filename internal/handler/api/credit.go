package api

import (
	"net/http"

	"GigCredit/internal/domain/models"
	"GigCredit/internal/usecase"
	xhttp "GigCredit/pkg/http"
	xlogger "GigCredit/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CreditHandler serves credit scoring endpoints.
type CreditHandler struct {
	logger *xlogger.Logger
	credit *usecase.CreditProfileUsecase
}

func NewCreditHandler(logger *xlogger.Logger, credit *usecase.CreditProfileUsecase) *CreditHandler {
	return &CreditHandler{logger: logger, credit: credit}
}

func (h *CreditHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/credit")
	g.POST("/calculate", h.Calculate)
	g.POST("/transactions", h.Ingest)
	g.GET("/:userId", h.Get)
	g.GET("/:userId/risk", h.Risk)
	g.GET("/:userId/summary", h.Summary)
	g.POST("/:userId/refresh", h.Refresh)
}

func (h *CreditHandler) Calculate(c echo.Context) error {
	req := &models.CalculateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := h.credit.Calculate(c.Request().Context(), req.UserID, req.Transactions, req.GigData)
	if err != nil {
		return fail(c, h.logger, "calculate", err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *CreditHandler) Ingest(c echo.Context) error {
	req := &models.IngestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.credit.Ingest(c.Request().Context(), req.UserID, req.Transactions)
	if err != nil {
		return fail(c, h.logger, "ingest", err)
	}
	return xhttp.DataResponse(c, http.StatusAccepted, res)
}

func (h *CreditHandler) Get(c echo.Context) error {
	userID := c.Param("userId")
	p, err := h.credit.Get(c.Request().Context(), userID)
	if err != nil {
		return fail(c, h.logger, "get profile", err)
	}
	if p == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("Credit profile %s not found", userID))
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *CreditHandler) Risk(c echo.Context) error {
	a, err := h.credit.Analyze(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return fail(c, h.logger, "analyze", err)
	}
	return xhttp.SuccessResponse(c, a)
}

func (h *CreditHandler) Summary(c echo.Context) error {
	s, err := h.credit.Summary(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return fail(c, h.logger, "summary", err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *CreditHandler) Refresh(c echo.Context) error {
	p, err := h.credit.Refresh(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return fail(c, h.logger, "refresh", err)
	}
	return xhttp.SuccessResponse(c, p)
}
