package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equinos_http_requests_total",
		Help: "Requisições HTTP atendidas",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "equinos_http_request_duration_seconds",
		Help:    "Latência das requisições HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// BackendCallsTotal counts calls to the record backend by resource and outcome.
	BackendCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equinos_backend_calls_total",
		Help: "Chamadas ao backend de registros",
	}, []string{"resource", "outcome"})

	// RemindersSent counts reminder digests delivered to the chat channel.
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "equinos_reminder_digests_sent_total",
		Help: "Resumos de lembretes enviados",
	})
)
