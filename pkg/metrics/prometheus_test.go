package metrics

import (
	"testing"
	"time"

	"GigCredit/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(WithRegisterer(reg))

	r.RecordScore(720, models.RiskLow)
	r.RecordScore(810, models.RiskLow)
	r.RecordScore(300, models.RiskHigh)
	r.RecordLoanTransition(models.EventOfferAccepted)
	r.RecordError("event_publish")
	r.RecordError("event_publish")
	r.RecordLatency("profile.calculate", 25*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.profiles.WithLabelValues("LOW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.profiles.WithLabelValues("HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("loan.offer_accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("event_publish")))

	n, err := testutil.GatherAndCount(reg, "gigcredit_credit_score", "gigcredit_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(WithRegisterer(prometheus.NewRegistry()))
		New(WithRegisterer(prometheus.NewRegistry()))
	})
}
