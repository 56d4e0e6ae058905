package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "rentnotice_"

	resultSuccess = "success"
	resultError   = "error"
	resultBlocked = "blocked"
)

var (
	registerOnce sync.Once

	ledgerBuildTotal   *prometheus.CounterVec
	ledgerBuildLatency *prometheus.HistogramVec

	noticeTotal   *prometheus.CounterVec
	noticeLatency *prometheus.HistogramVec
	layoutPages   prometheus.Histogram

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	paymentsRecorded *prometheus.CounterVec
	emailDispatch    *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ledgerBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_build_total",
				Help: "Total ledger builds by result",
			},
			[]string{"result"},
		)
		ledgerBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ledger_build_latency_seconds",
				Help:    "Ledger build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		noticeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notice_operations_total",
				Help: "Total notice operations by action and result",
			},
			[]string{"action", "result"},
		)
		noticeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "notice_operation_latency_seconds",
				Help:    "Notice operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "result"},
		)
		layoutPages = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "notice_layout_pages",
				Help:    "Pages produced per laid-out notice",
				Buckets: []float64{1, 2, 3, 5, 8, 13},
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total document exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Document export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		paymentsRecorded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payments_recorded_total",
				Help: "Total payment record attempts by result",
			},
			[]string{"result"},
		)
		emailDispatch = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "email_dispatch_total",
				Help: "Total queued email deliveries by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			ledgerBuildTotal,
			ledgerBuildLatency,
			noticeTotal,
			noticeLatency,
			layoutPages,
			exportTotal,
			exportLatency,
			paymentsRecorded,
			emailDispatch,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveLedgerBuild records ledger build latency and result.
func ObserveLedgerBuild(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ledgerBuildTotal != nil {
		ledgerBuildTotal.WithLabelValues(result).Inc()
	}
	if ledgerBuildLatency != nil {
		ledgerBuildLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveNotice records a notice preview, document, save or send.
func ObserveNotice(action, result string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if noticeTotal != nil {
		noticeTotal.WithLabelValues(action, result).Inc()
	}
	if noticeLatency != nil {
		noticeLatency.WithLabelValues(action, result).Observe(duration.Seconds())
	}
}

// ObserveLayoutPages records the page count of a laid-out notice.
func ObserveLayoutPages(pages int) {
	if pages <= 0 {
		return
	}
	if layoutPages != nil {
		layoutPages.Observe(float64(pages))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncPaymentRecorded increments the payment counter.
func IncPaymentRecorded(result string) {
	if result == "" {
		result = resultSuccess
	}
	if paymentsRecorded != nil {
		paymentsRecorded.WithLabelValues(result).Inc()
	}
}

// IncEmailDispatch increments the email delivery counter.
func IncEmailDispatch(result string) {
	if result == "" {
		result = resultSuccess
	}
	if emailDispatch != nil {
		emailDispatch.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
	// ResultBlocked marks notice operations stopped by validation.
	ResultBlocked = resultBlocked
)
