package api

import (
	"net/http"

	"GigCredit/internal/domain/models"
	"GigCredit/internal/middleware"
	"GigCredit/internal/usecase"
	xhttp "GigCredit/pkg/http"
	xlogger "GigCredit/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LoanHandler serves the borrower side of the marketplace. Every route
// requires X-User-ID.
type LoanHandler struct {
	logger      *xlogger.Logger
	market      *usecase.LoanMarketplace
	eligibility *usecase.EligibilityUsecase
}

func NewLoanHandler(logger *xlogger.Logger, market *usecase.LoanMarketplace, eligibility *usecase.EligibilityUsecase) *LoanHandler {
	return &LoanHandler{logger: logger, market: market, eligibility: eligibility}
}

func (h *LoanHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/loans", middleware.RequireBorrower())
	g.GET("/eligibility", h.Eligibility)
	g.POST("", h.Apply)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/offers/:offerId/accept", h.AcceptOffer)
	g.POST("/:id/offers/:offerId/reject", h.RejectOffer)
	g.POST("/:id/repayments", h.RequestRepayment)
}

func (h *LoanHandler) Eligibility(c echo.Context) error {
	res, err := h.eligibility.Check(c.Request().Context(), middleware.BorrowerID(c))
	if err != nil {
		return fail(c, h.logger, "eligibility", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *LoanHandler) Apply(c echo.Context) error {
	req := &models.ApplyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	loan, err := h.market.Apply(c.Request().Context(), middleware.BorrowerID(c), models.LoanApplication{
		Amount:             req.Amount,
		Purpose:            req.Purpose,
		PurposeDescription: req.PurposeDescription,
		UrgencyLevel:       req.UrgencyLevel,
	})
	if err != nil {
		return fail(c, h.logger, "apply", err)
	}
	return xhttp.CreatedResponse(c, loan)
}

func (h *LoanHandler) List(c echo.Context) error {
	loans, err := h.market.ListMyLoans(c.Request().Context(), middleware.BorrowerID(c))
	if err != nil {
		return fail(c, h.logger, "list loans", err)
	}
	if loans == nil {
		loans = []*models.Loan{}
	}
	start, end := xhttp.PageBounds(c, len(loans))
	return xhttp.ListResponse(c, loans[start:end], int64(len(loans)))
}

func (h *LoanHandler) Get(c echo.Context) error {
	loan, err := h.market.GetLoan(c.Request().Context(), middleware.BorrowerID(c), c.Param("id"))
	if err != nil {
		return fail(c, h.logger, "get loan", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LoanHandler) AcceptOffer(c echo.Context) error {
	loan, err := h.market.AcceptOffer(c.Request().Context(), middleware.BorrowerID(c), c.Param("id"), c.Param("offerId"))
	if err != nil {
		return fail(c, h.logger, "accept offer", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LoanHandler) RejectOffer(c echo.Context) error {
	loan, err := h.market.RejectOffer(c.Request().Context(), middleware.BorrowerID(c), c.Param("id"), c.Param("offerId"))
	if err != nil {
		return fail(c, h.logger, "reject offer", err)
	}
	return xhttp.SuccessResponse(c, loan)
}

func (h *LoanHandler) RequestRepayment(c echo.Context) error {
	req := &models.RepaymentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	loan, payment, err := h.market.RequestRepayment(c.Request().Context(), middleware.BorrowerID(c), c.Param("id"), models.RepaymentInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Note:      req.Note,
	})
	if err != nil {
		return fail(c, h.logger, "request repayment", err)
	}
	return xhttp.DataResponse(c, http.StatusCreated, map[string]interface{}{
		"loan":      loan,
		"repayment": payment,
	})
}
