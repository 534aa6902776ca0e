package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trc_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	ReservationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trc_reservations_created_total",
			Help: "Reservations created, by booking variant",
		},
		[]string{"variant"},
	)

	DependentWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trc_dependent_write_failures_total",
			Help: "Dependent record writes that failed after the parent persisted",
		},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trc_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trc_outbox_lag_seconds",
			Help: "Lag of outbox publishing",
		},
	)

	RabbitPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trc_rabbit_publish_retries_total",
			Help: "Total rabbit publish retries",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trc_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)

	SweepCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trc_sweep_cancelled_total",
			Help: "Orphaned pending reservations cancelled by the sweep",
		},
	)
)
