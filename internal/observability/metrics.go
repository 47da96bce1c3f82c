package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation outcome labels for calcctl_calc_eval_results_total.
const (
	OutcomeResult    = "result"
	OutcomeInvalid   = "invalid_expression"
	OutcomeDivByZero = "division_by_zero"
	OutcomeLineDrop  = "line_dropped"
)

var (
	registerOnce sync.Once

	linesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calcctl",
			Subsystem: "calc",
			Name:      "lines_total",
			Help:      "Completed input lines per transport.",
		},
		[]string{"transport"},
	)
	evalResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calcctl",
			Subsystem: "calc",
			Name:      "eval_results_total",
			Help:      "Evaluation outcomes per transport.",
		},
		[]string{"transport", "outcome"},
	)
	evalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "calcctl",
			Subsystem: "calc",
			Name:      "eval_duration_seconds",
			Help:      "Expression evaluation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"transport"},
	)
	bytesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calcctl",
			Subsystem: "calc",
			Name:      "bytes_dropped_total",
			Help:      "Input bytes discarded on line-buffer overflow.",
		},
		[]string{"transport"},
	)
	linesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calcctl",
			Subsystem: "calc",
			Name:      "lines_dropped_total",
			Help:      "Completed lines discarded on line-queue overflow.",
		},
		[]string{"transport"},
	)
	sessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "calcctl",
			Subsystem: "calc",
			Name:      "sessions_active",
			Help:      "Currently open calculator sessions.",
		},
		[]string{"transport"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calcctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "calcctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			linesTotal,
			evalResults,
			evalDuration,
			bytesDropped,
			linesDropped,
			sessionsActive,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordLine(transport string) {
	RegisterMetrics()
	linesTotal.WithLabelValues(transport).Inc()
}

func RecordEvalResult(transport, outcome string, duration time.Duration) {
	RegisterMetrics()
	evalResults.WithLabelValues(transport, outcome).Inc()
	evalDuration.WithLabelValues(transport).Observe(duration.Seconds())
}

func RecordBytesDropped(transport string, n int) {
	RegisterMetrics()
	bytesDropped.WithLabelValues(transport).Add(float64(n))
}

func RecordLineDropped(transport string) {
	RegisterMetrics()
	linesDropped.WithLabelValues(transport).Inc()
	evalResults.WithLabelValues(transport, OutcomeLineDrop).Inc()
}

func SessionOpened(transport string) {
	RegisterMetrics()
	sessionsActive.WithLabelValues(transport).Inc()
}

func SessionClosed(transport string) {
	RegisterMetrics()
	sessionsActive.WithLabelValues(transport).Dec()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
