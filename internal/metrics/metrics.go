package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moviesearch",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "provider_requests_total",
		Help:      "Total requests to metadata and video providers by provider, operation and result status.",
	}, []string{"provider", "operation", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moviesearch",
		Name:      "provider_request_duration_seconds",
		Help:      "Provider request duration in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"provider", "operation"})

	TrailerLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "trailer_lookups_total",
		Help:      "Trailer lookups by the stage that resolved them (tmdb, youtube, memo, none, error).",
	}, []string{"stage"})

	TrailerMemoSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "moviesearch",
		Name:      "trailer_memo_entries",
		Help:      "Number of memoised trailer lookups.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		TrailerLookupsTotal,
		TrailerMemoSize,
	)
}

// Status renders an error as a provider status label
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
