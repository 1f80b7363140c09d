// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fintrack"

// ProjectionRuns counts timeline projections by endpoint kind.
var ProjectionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "projection",
	Name:      "runs_total",
	Help:      "Total projection runs by kind (calendar, summary, balance, export, report).",
}, []string{"kind"})

// ProjectionDuration observes how long a projection run takes.
var ProjectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "projection",
	Name:      "duration_seconds",
	Help:      "Time spent generating a projection.",
	Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
}, []string{"kind"})

// ProjectionDays observes how many daily records a run produced.
var ProjectionDays = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "projection",
	Name:      "days",
	Help:      "Number of daily records per projection.",
	Buckets:   []float64{31, 92, 183, 366, 745, 1500},
})

// CSVImportRows counts imported bill rows by result (imported, skipped).
var CSVImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "csv",
	Name:      "import_rows_total",
	Help:      "Bill import rows by result.",
}, []string{"result"})

// CacheLookups counts projection cache lookups by result (hit, miss).
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Projection cache lookups by result.",
}, []string{"result"})

// RolloverAccounts counts accounts processed by the rollover job by result
// (rolled, current, conflict, failed).
var RolloverAccounts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rollover",
	Name:      "accounts_total",
	Help:      "Accounts processed by the anchor rollover job.",
}, []string{"result"})

// LowBalanceAlerts counts low-balance notifications sent.
var LowBalanceAlerts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notify",
	Name:      "low_balance_alerts_total",
	Help:      "Low balance alert emails sent.",
})

// ReportRequests counts report export requests by result (published, written,
// dropped, failed).
var ReportRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "report",
	Name:      "requests_total",
	Help:      "Sheets report requests by result.",
}, []string{"result"})

// HTTPRequests counts served requests by route pattern, method and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route, method and status code.",
}, []string{"route", "method", "status"})

// HTTPDuration observes request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// RateLimitHits counts requests rejected by the per-client limiter.
var RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the rate limiter.",
})

// SuspiciousRequests counts requests matching a known probe pattern.
var SuspiciousRequests = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "suspicious_requests_total",
	Help:      "Requests flagged by the probe detector.",
})
