package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/gopayout/internal/domain"
)

const namespace = "gopayout"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Disbursement metrics
	DisbursementsCreated prometheus.Counter
	DisbursedAmount      prometheus.Counter
	DisbursementFees     prometheus.Counter
	DisbursementOrders   prometheus.Histogram

	// Batch metrics
	BatchDuration    *prometheus.HistogramVec
	BatchMerchants   *prometheus.CounterVec
	MerchantFailures *prometheus.CounterVec

	// Monthly fee metrics
	AdjustmentsCreated prometheus.Counter
	AdjustmentAmount   prometheus.Counter

	// Outbox metrics
	OutboxEvents  *prometheus.CounterVec
	OutboxPending prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		DisbursementsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disbursements_created_total",
			Help:      "Total number of disbursements created",
		}),
		DisbursedAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disbursed_amount_euros_total",
			Help:      "Gross order amount disbursed in euros",
		}),
		DisbursementFees: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disbursement_fees_euros_total",
			Help:      "Order fees withheld from disbursements in euros",
		}),
		DisbursementOrders: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "disbursement_orders",
			Help:      "Number of orders settled by one disbursement",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),

		BatchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of batch jobs",
			Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		}, []string{"job"}),
		BatchMerchants: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_merchants_total",
			Help:      "Merchants processed by batch jobs",
		}, []string{"job", "outcome"}),
		MerchantFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merchant_failures_total",
			Help:      "Merchants that failed inside a batch job",
		}, []string{"job", "reason"}),

		AdjustmentsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monthly_fee_adjustments_created_total",
			Help:      "Total number of monthly fee adjustments created",
		}),
		AdjustmentAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monthly_fee_adjustment_euros_total",
			Help:      "Monthly minimum fee shortfall charged in euros",
		}),

		OutboxEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox events handled by the publisher",
		}, []string{"event_type", "outcome"}),
		OutboxPending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_pending_events",
			Help:      "Outbox events waiting to be published",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "path"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// DisbursementCreated records a committed disbursement.
func (m *Metrics) DisbursementCreated(d *domain.Disbursement) {
	m.DisbursementsCreated.Inc()
	m.DisbursedAmount.Add(euros(d.AmountCents))
	m.DisbursementFees.Add(euros(d.FeesAmountCents))
	m.DisbursementOrders.Observe(float64(len(d.Orders)))
}

// MerchantFailed records a merchant failure of job.
func (m *Metrics) MerchantFailed(job, reason string) {
	m.MerchantFailures.WithLabelValues(job, reason).Inc()
}

// BatchCompleted records the outcome of a whole batch run.
func (m *Metrics) BatchCompleted(job string, duration time.Duration, successful, failed int) {
	m.BatchDuration.WithLabelValues(job).Observe(duration.Seconds())
	m.BatchMerchants.WithLabelValues(job, "success").Add(float64(successful))
	m.BatchMerchants.WithLabelValues(job, "failure").Add(float64(failed))
}

// AdjustmentCreated records a committed monthly fee adjustment.
func (m *Metrics) AdjustmentCreated(a *domain.MonthlyFeeAdjustment) {
	m.AdjustmentsCreated.Inc()
	m.AdjustmentAmount.Add(euros(a.AmountCents))
}

// EventPublished records an outbox event handed to the publisher.
func (m *Metrics) EventPublished(eventType string) {
	m.OutboxEvents.WithLabelValues(eventType, "published").Inc()
}

// EventFailed records an outbox event the publisher rejected.
func (m *Metrics) EventFailed(eventType string) {
	m.OutboxEvents.WithLabelValues(eventType, "failed").Inc()
}

// OutboxBacklog records the number of unpublished outbox events.
func (m *Metrics) OutboxBacklog(pending int64) {
	m.OutboxPending.Set(float64(pending))
}

func euros(cents int64) float64 {
	return domain.CentsToDecimal(cents).InexactFloat64()
}
