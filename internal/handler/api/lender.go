package api

import (
	"GigCredit/internal/domain/models"
	"GigCredit/internal/middleware"
	"GigCredit/internal/usecase"
	xhttp "GigCredit/pkg/http"
	xlogger "GigCredit/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LenderHandler serves the lender side of the marketplace. Every route
// requires X-Lender-ID.
type LenderHandler struct {
	logger *xlogger.Logger
	market *usecase.LoanMarketplace
}

func NewLenderHandler(logger *xlogger.Logger, market *usecase.LoanMarketplace) *LenderHandler {
	return &LenderHandler{logger: logger, market: market}
}

func (h *LenderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/lender", middleware.RequireLender())
	g.GET("/applications", h.Applications)
	g.GET("/applications/:id", h.Application)
	g.GET("/stats", h.Stats)
	g.POST("/loans/:id/offer", h.MakeOffer)
	g.POST("/loans/:id/pass", h.Pass)
	g.POST("/loans/:id/withdraw", h.Withdraw)
	g.POST("/loans/:id/disburse", h.Disburse)
	g.POST("/loans/:id/repayments/:paymentId/confirm", h.ConfirmPayment)
	g.POST("/loans/:id/repayments/:paymentId/reject", h.RejectPayment)
	g.POST("/loans/:id/default", h.MarkDefaulted)
}

func (h *LenderHandler) Applications(c echo.Context) error {
	req := &models.ApplicationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.market.ListApplications(c.Request().Context(), middleware.LenderFrom(c),
		models.ApplicationFilter(req.Filter), models.LoanStatus(req.Status))
	if err != nil {
		return fail(c, h.logger, "list applications", err)
	}
	if rows == nil {
		rows = []models.ApplicationRow{}
	}
	start, end := xhttp.PageBounds(c, len(rows))
	return xhttp.ListResponse(c, rows[start:end], int64(len(rows)))
}

func (h *LenderHandler) Application(c echo.Context) error {
	row, err := h.market.GetApplication(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"))
	if err != nil {
		return fail(c, h.logger, "get application", err)
	}
	return xhttp.SuccessResponse(c, row)
}

func (h *LenderHandler) Stats(c echo.Context) error {
	stats, err := h.market.Stats(c.Request().Context(), middleware.LenderFrom(c))
	if err != nil {
		return fail(c, h.logger, "stats", err)
	}
	return xhttp.SuccessResponse(c, stats)
}

func (h *LenderHandler) MakeOffer(c echo.Context) error {
	req := &models.OfferRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	loan, offer, err := h.market.MakeOffer(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"), models.OfferTermsInput{
		InterestRate:        req.InterestRate,
		RepaymentTermMonths: req.RepaymentTermMonths,
		OfferedAmount:       req.OfferedAmount,
		Notes:               req.LenderNotes,
	})
	if err != nil {
		return fail(c, h.logger, "make offer", err)
	}
	return xhttp.CreatedResponse(c, map[string]interface{}{"loan": loan, "offer": offer})
}

func (h *LenderHandler) Pass(c echo.Context) error {
	req := &models.PassRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	loan, err := h.market.Pass(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		return fail(c, h.logger, "pass", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LenderHandler) Withdraw(c echo.Context) error {
	loan, err := h.market.WithdrawOffer(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"))
	if err != nil {
		return fail(c, h.logger, "withdraw offer", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LenderHandler) Disburse(c echo.Context) error {
	loan, err := h.market.Disburse(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"))
	if err != nil {
		return fail(c, h.logger, "disburse", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LenderHandler) ConfirmPayment(c echo.Context) error {
	loan, err := h.market.ConfirmPayment(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"), c.Param("paymentId"))
	if err != nil {
		return fail(c, h.logger, "confirm payment", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LenderHandler) RejectPayment(c echo.Context) error {
	req := &models.RejectPaymentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	loan, err := h.market.RejectPayment(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"), c.Param("paymentId"), req.Reason)
	if err != nil {
		return fail(c, h.logger, "reject payment", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LenderHandler) MarkDefaulted(c echo.Context) error {
	loan, err := h.market.MarkDefaulted(c.Request().Context(), middleware.LenderFrom(c), c.Param("id"))
	if err != nil {
		return fail(c, h.logger, "mark defaulted", err)
	}
	return xhttp.SuccessResponse(c, loan)
}
