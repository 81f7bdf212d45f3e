// Package jobmetrics instruments the background worker.
package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics holds the worker's collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	unpaid      *prometheus.GaugeVec
	now         func() time.Time
}

// NewMetrics registers the job collectors on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	f := promauto.With(registerer)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brewops_jobs_total",
			Help: "Job executions by job type and status.",
		}, []string{"job", "status"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brewops_jobs_failures_total",
			Help: "Failed job executions by job type.",
		}, []string{"job"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brewops_job_duration_seconds",
			Help:    "Job execution time by job type.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		}, []string{"job"}),
		lastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brewops_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run by job type.",
		}, []string{"job"}),
		unpaid: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brewops_unpaid_suppliers",
			Help: "Active suppliers with deliveries but no monthly payment, by month.",
		}, []string{"month"}),
		now: time.Now,
	}
}

// Run measures one execution of a job.
type Run struct {
	m     *Metrics
	job   string
	start time.Time
}

// Track starts measuring a run of job.
func (m *Metrics) Track(job string) *Run {
	r := &Run{m: m, job: job}
	if m != nil {
		r.start = m.now()
	}
	return r
}

// End records the outcome of the run and returns err unchanged.
func (r *Run) End(err error) error {
	if r == nil || r.m == nil {
		return err
	}
	status := outcomeSuccess
	if err != nil {
		status = outcomeFailure
		r.m.failures.WithLabelValues(r.job).Inc()
	}
	end := r.m.now()
	r.m.runs.WithLabelValues(r.job, status).Inc()
	r.m.duration.WithLabelValues(r.job).Observe(end.Sub(r.start).Seconds())
	if err == nil {
		r.m.lastSuccess.WithLabelValues(r.job).Set(float64(end.Unix()))
	}
	return err
}

// SetUnpaidSuppliers publishes the unpaid supplier count seen for month.
func (m *Metrics) SetUnpaidSuppliers(month string, count int) {
	if m == nil {
		return
	}
	m.unpaid.WithLabelValues(month).Set(float64(count))
}
