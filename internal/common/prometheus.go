package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	UpstreamRefreshTotal       = "upstream_refresh_total"
	UpstreamRateLimitedTotal   = "upstream_rate_limited_total"
	ListeningHistoryStored     = "listening_history_stored_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		UpstreamRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: UpstreamRefreshTotal,
			Help: "Count of upstream credential refreshes",
		}, []string{"result"}),
		UpstreamRateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: UpstreamRateLimitedTotal,
			Help: "Count of upstream calls rejected because of rate limiting",
		}, []string{"source"}),
		ListeningHistoryStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ListeningHistoryStored,
			Help: "Count of plays fetched by the listening history job",
		}, []string{}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}
)
