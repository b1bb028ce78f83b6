// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meme-coin-tracker/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Scanner metrics
	ScansTotal     prometheus.Counter
	CoinsGenerated *prometheus.CounterVec
	RiskScore      prometheus.Histogram
	SchedulerUp    prometheus.Gauge

	// Store metrics
	StoreSize       prometheus.Gauge
	LastUpdateStamp prometheus.Gauge

	// API metrics
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	HTTPRateLimited  prometheus.Counter
	WebsocketClients prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the Prometheus default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "meme_coin_tracker"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Scanner metrics
		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "scans_total",
			Help:      "Total number of scheduler firings",
		}),
		CoinsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "coins_generated_total",
			Help:      "Total number of coins generated by rug-pull risk level",
		}, []string{"risk_level"}),
		RiskScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "risk_score",
			Help:      "Distribution of generated risk scores",
			Buckets:   []float64{0, 25, 50, 80, 100, 125, 165},
		}),
		SchedulerUp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "active",
			Help:      "1 while the scan timer is running, 0 otherwise",
		}),

		// Store metrics
		StoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "coins",
			Help:      "Number of coins currently held",
		}),
		LastUpdateStamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "last_update_timestamp",
			Help:      "Unix timestamp of the last store update",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		HTTPRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),
		WebsocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients",
		}),
	}
}

// HandlerFor returns an HTTP handler exposing the metrics gathered by g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordCoin records one generated coin and the resulting store state.
func (m *Metrics) RecordCoin(c domain.CoinRecord, storeSize int, lastUpdate time.Time) {
	if m == nil {
		return
	}
	m.ScansTotal.Inc()
	m.CoinsGenerated.WithLabelValues(c.RugPullRisk.String()).Inc()
	m.RiskScore.Observe(float64(c.RiskScore))
	m.StoreSize.Set(float64(storeSize))
	m.LastUpdateStamp.Set(float64(lastUpdate.Unix()))
}

// SetSchedulerActive updates the scheduler state gauge.
func (m *Metrics) SetSchedulerActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.SchedulerUp.Set(1)
	} else {
		m.SchedulerUp.Set(0)
	}
}

// RecordRequest records HTTP request metrics.
func (m *Metrics) RecordRequest(route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusLabel(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// RecordRateLimited increments the rate limited counter.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.HTTPRateLimited.Inc()
}

// AddWebsocketClients adjusts the connected websocket client gauge by delta.
func (m *Metrics) AddWebsocketClients(delta int) {
	if m == nil {
		return
	}
	m.WebsocketClients.Add(float64(delta))
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
