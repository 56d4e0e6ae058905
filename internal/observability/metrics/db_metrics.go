package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "email_queue_pending",
			Help: "Queued notice emails waiting for delivery",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM email_queue WHERE status = 'pending'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "email_queue_failed",
			Help: "Queued notice emails whose delivery failed",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM email_queue WHERE status = 'failed'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
