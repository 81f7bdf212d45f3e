package jobmetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	at := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return at }

	require.NoError(t, m.Track("settlement:recorded").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("settlement:recorded").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("settlement:recorded", outcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("settlement:recorded", outcomeFailure)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("settlement:recorded")))
	require.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.lastSuccess.WithLabelValues("settlement:recorded")))
}

func TestSetUnpaidSuppliers(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SetUnpaidSuppliers("2024-03", 4)
	m.SetUnpaidSuppliers("2024-03", 2)
	require.Equal(t, 2.0, testutil.ToFloat64(m.unpaid.WithLabelValues("2024-03")))
}

func TestNilMetricsPassErrorsThrough(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("x").End(boom), boom)
	m.SetUnpaidSuppliers("2024-03", 1)
}
