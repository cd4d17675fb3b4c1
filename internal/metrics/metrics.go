package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts responses by route and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_http_requests_total",
		Help: "The total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	// RequestDuration observes handler latency by route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchmaker_http_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginAttemptsTotal counts logins by result (success, failure, error).
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"result"})

	// LobbyOperationsTotal counts lobby operations by kind and outcome.
	LobbyOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_lobby_operations_total",
		Help: "The total number of lobby operations",
	}, []string{"operation", "result"})

	// ReapedTotal counts rows removed by the reaper.
	ReapedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_reaped_total",
		Help: "The total number of expired rows removed",
	}, []string{"kind"})

	// LobbyWatchers tracks open lobby event streams.
	LobbyWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchmaker_lobby_watchers",
		Help: "The number of open lobby event streams",
	})
)

// LobbyOperation records the outcome of a lobby operation.
func LobbyOperation(operation string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	LobbyOperationsTotal.WithLabelValues(operation, result).Inc()
}

// Middleware records request count and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
