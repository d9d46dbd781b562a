// Package metrics provides Prometheus instrumentation for the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GateDecisions counts access checks by outcome and reason.
	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmg_gate_decisions_total",
		Help: "Token gate decisions by outcome and reason",
	}, []string{"decision", "reason"})

	// OracleLookups counts ledger balance reads by result (found, absent, unavailable, malformed).
	OracleLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmg_oracle_lookups_total",
		Help: "Ledger balance lookups by result",
	}, []string{"result"})

	// OracleLatency tracks ledger RPC round trips.
	OracleLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pmg_oracle_latency_seconds",
		Help:    "Ledger balance lookup latency in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// MarketsCreated counts markets that passed the gate and were stored.
	MarketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pmg_markets_created_total",
		Help: "Markets created",
	})

	// Resolutions counts resolve attempts by result.
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmg_market_resolutions_total",
		Help: "Market resolve attempts by result",
	}, []string{"result"})

	// ClaimEvaluations counts claim checks by result.
	ClaimEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmg_claim_evaluations_total",
		Help: "Claim eligibility evaluations by result",
	}, []string{"result"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pmg_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// WebhookDeliveries counts webhook attempts by result.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmg_webhook_deliveries_total",
		Help: "Webhook deliveries by result",
	}, []string{"result"})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmg_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pmg_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics. The route template is used as the
// path label so market ids do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
