package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"GigCredit/internal/domain/models"
	"GigCredit/internal/repository"
	"GigCredit/internal/service/ratelimit"
	"GigCredit/internal/services/scoring"
	"GigCredit/internal/usecase"
	xhttp "GigCredit/pkg/http"
	xlogger "GigCredit/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopMetrics struct{}

func (nopMetrics) RecordScore(int, models.RiskLevel)     {}
func (nopMetrics) RecordLoanTransition(models.EventType) {}
func (nopMetrics) RecordError(string)                    {}
func (nopMetrics) RecordLatency(string, time.Duration)   {}

type fixedEligibility struct{ max float64 }

func (e fixedEligibility) Check(context.Context, string) (*models.EligibilityResult, error) {
	return &models.EligibilityResult{Eligible: true, MaxAmount: e.max, CreditScore: 700, RiskLevel: models.RiskMedium}, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiFixture struct {
	e     *echo.Echo
	store *repository.MemoryStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	log := xlogger.NewNop()
	store := repository.NewMemoryStore()
	pub := repository.NopEventPublisher{}

	credit := usecase.NewCreditProfileUsecase(scoring.NewEngine(), store, store.Ledger(), nil, nil, pub, nopMetrics{}, log)
	market := usecase.NewLoanMarketplace(store.Loans(), fixedEligibility{max: 100000}, pub, nopMetrics{}, log)
	router := NewRouter(
		NewCreditHandler(log, credit),
		NewLoanHandler(log, market, usecase.NewEligibilityUsecase(credit)),
		NewLenderHandler(log, market),
		ratelimit.New(1000, 1000),
	)
	router.AddHealthCheck("ledger", store.Ledger())

	srv := xhttp.NewServer(router, xhttp.WithLogger(log))
	return &apiFixture{e: srv.Echo(), store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func recentWages(months int) string {
	now := time.Now().UTC()
	var txns []string
	for m := months; m >= 1; m-- {
		first := now.AddDate(0, -m, 0)
		for d := 0; d < 20; d++ {
			txns = append(txns, `{"date":"`+first.AddDate(0, 0, d).Format(time.RFC3339)+`","type":"credit","amount":1500,"category":"delivery","source":"platform"}`)
		}
		txns = append(txns, `{"date":"`+first.AddDate(0, 0, 2).Format(time.RFC3339)+`","type":"debit","amount":8000,"category":"rent","source":"bank"}`)
	}
	return "[" + strings.Join(txns, ",") + "]"
}

var (
	borrower = map[string]string{"X-User-ID": "b1"}
	stranger = map[string]string{"X-User-ID": "b2"}
	lenderA  = map[string]string{"X-Lender-ID": "l1", "X-Lender-Name": "Asha", "X-Lender-Org": "Alpha Finance"}
	lenderB  = map[string]string{"X-Lender-ID": "l2"}
)

func TestCreditEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/credit/calculate", `{"userId":"u1","transactions":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "ERR_VALIDATION")
	assert.Contains(t, string(env.Data), "Transactions array cannot be empty")

	code, env = f.do(t, http.MethodPost, "/api/credit/calculate", `{"transactions":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "ERR_REQUIRED")

	code, _ = f.do(t, http.MethodGet, "/api/credit/u1", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = f.do(t, http.MethodPost, "/api/credit/calculate", `{"userId":"u1","transactions":`+recentWages(3)+`}`, nil)
	require.Equal(t, http.StatusOK, code, string(env.Data))
	var p models.CreditProfile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "u1", p.UserID)
	assert.GreaterOrEqual(t, p.CreditScore, 0)
	assert.LessOrEqual(t, p.CreditScore, 1000)

	code, env = f.do(t, http.MethodGet, "/api/credit/u1", "", nil)
	assert.Equal(t, http.StatusOK, code)
	var got models.CreditProfile
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, p.CreditScore, got.CreditScore)

	code, _ = f.do(t, http.MethodGet, "/api/credit/u1/risk", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodPost, "/api/credit/u1/refresh", "", nil)
	assert.Equal(t, http.StatusNotFound, code, "calculate does not write the ledger")

	code, _ = f.do(t, http.MethodPost, "/api/credit/transactions", `{"userId":"u1","transactions":`+recentWages(2)+`}`, nil)
	assert.Equal(t, http.StatusAccepted, code)
	code, _ = f.do(t, http.MethodPost, "/api/credit/u1/refresh", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestEligibilityWithoutProfile(t *testing.T) {
	f := newAPIFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/loans/eligibility", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := f.do(t, http.MethodGet, "/api/loans/eligibility", "", borrower)
	require.Equal(t, http.StatusOK, code)
	var res models.EligibilityResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res.Eligible)
	assert.Contains(t, res.Reasons, "No credit profile found. Please complete credit analysis first.")
}

func TestMarketplaceOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/loans", `{"amount":50000,"purpose":"medical"}`, borrower)
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	var loan models.Loan
	require.NoError(t, json.Unmarshal(env.Data, &loan))
	assert.Equal(t, "medium", loan.UrgencyLevel)

	code, env = f.do(t, http.MethodPost, "/api/loans", `{"amount":50000,"purpose":"holiday"}`, borrower)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "ERR_ONEOF")

	code, _ = f.do(t, http.MethodGet, "/api/loans/"+loan.ID, "", stranger)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = f.do(t, http.MethodPost, "/api/lender/loans/"+loan.ID+"/offer", `{"interestRate":15,"repaymentTermMonths":12}`, lenderA)
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	var made struct {
		Offer models.Offer `json:"offer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &made))
	assert.Equal(t, 57500.0, made.Offer.TotalRepayable)
	assert.Equal(t, "Alpha Finance", made.Offer.LenderOrganization)

	code, _ = f.do(t, http.MethodPost, "/api/lender/loans/"+loan.ID+"/disburse", "", lenderA)
	assert.Equal(t, http.StatusForbidden, code, "no owner before acceptance")

	code, _ = f.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/offers/"+made.Offer.OfferID+"/accept", "", borrower)
	require.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodPost, "/api/lender/loans/"+loan.ID+"/disburse", "", lenderB)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.do(t, http.MethodPost, "/api/lender/loans/"+loan.ID+"/disburse", "", lenderA)
	require.Equal(t, http.StatusOK, code)

	code, env = f.do(t, http.MethodPost, "/api/lender/loans/"+loan.ID+"/disburse", "", lenderA)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, string(env.Data), "ERR_STATE_CONFLICT")

	code, env = f.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/repayments", `{"amount":10000}`, borrower)
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	var rep struct {
		Repayment models.Repayment `json:"repayment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, "bank_transfer", rep.Repayment.Method)

	code, _ = f.do(t, http.MethodPost, "/api/lender/loans/"+loan.ID+"/repayments/"+rep.Repayment.PaymentID+"/confirm", "", lenderA)
	assert.Equal(t, http.StatusOK, code)

	code, env = f.do(t, http.MethodGet, "/api/lender/stats", "", lenderA)
	require.Equal(t, http.StatusOK, code)
	var stats models.LenderStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.DisbursedCount)

	code, env = f.do(t, http.MethodGet, "/api/lender/applications?filter=owned", "", lenderA)
	require.Equal(t, http.StatusOK, code)
	var list xhttp.ListDataResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)

	code, _ = f.do(t, http.MethodGet, "/api/lender/applications?filter=mine", "", lenderA)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	code, env := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"ledger":"ok"`)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&models.ValidationError{Index: 2, Field: "amount", Reason: "bad"}, http.StatusBadRequest, "ERR_VALIDATION"},
		{&models.NotFoundError{Resource: "Loan", ID: "x"}, http.StatusNotFound, "ERR_NOT_FOUND"},
		{&models.StateConflictError{Resource: "Loan", ID: "x", Current: "approved"}, http.StatusConflict, "ERR_STATE_CONFLICT"},
		{&models.OwnershipError{Resource: "Loan", ID: "x", Actor: "l2"}, http.StatusForbidden, "ERR_FORBIDDEN"},
	}
	for _, tt := range tests {
		var appErr *xhttp.AppError
		require.True(t, errors.As(toAppError(tt.err), &appErr))
		assert.Equal(t, tt.status, appErr.Status)
		assert.Equal(t, tt.code, appErr.Code)
	}

	plain := errors.New("mongo down")
	assert.Equal(t, plain, toAppError(plain))
}
