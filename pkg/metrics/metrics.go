// Package metrics holds the prometheus collectors shared by the HTTP layer and the authorization core.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backoffice_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	AuthzDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_authz_decisions_total",
			Help: "Authorization decisions by permission and result.",
		},
		[]string{"permission", "result"},
	)

	AuthnFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_authn_failures_total",
			Help: "Failed authentications by reason.",
		},
		[]string{"reason"},
	)

	AuditWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_audit_writes_total",
			Help: "Audit entries written, by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	PrivilegeCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_privilege_cache_lookups_total",
			Help: "Privilege resolver cache lookups by result.",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPInFlight,
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AuthzDecisions,
			AuthnFailures,
			AuditWrites,
			PrivilegeCache,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
