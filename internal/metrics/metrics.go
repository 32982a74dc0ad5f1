// Package metrics exposes Prometheus counters for HTTP traffic and Slack calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slackpanel_http_requests_total",
		Help: "HTTP requests served, by method and status code.",
	}, []string{"method", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slackpanel_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	slackCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slackpanel_slack_calls_total",
		Help: "Slack Web API calls, by method and outcome (ok, remote_error, transport_error).",
	}, []string{"method", "outcome"})
)

// Slack call outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeRemoteError    = "remote_error"
	OutcomeTransportError = "transport_error"
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, slackCalls)
}

// Handler returns the Prometheus exposition handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one served request.
func ObserveHTTP(method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// IncSlackCall records one Slack Web API call.
func IncSlackCall(method, outcome string) {
	slackCalls.WithLabelValues(method, outcome).Inc()
}
