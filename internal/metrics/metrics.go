package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewpilot_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reviewpilot_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	GitHubCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewpilot_github_calls_total",
		Help: "Calls to the GitHub API by operation and outcome",
	}, []string{"operation", "outcome"})

	OAuthCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewpilot_oauth_callbacks_total",
		Help: "GitHub OAuth callbacks by result",
	}, []string{"result"})

	DomainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewpilot_domain_events_total",
		Help: "Dispatched domain events by type",
	}, []string{"type"})

	SyncedRepositories = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewpilot_synced_repositories_total",
		Help: "Repositories upserted by sync requests",
	})
)

// ObserveGitHubCall records the outcome of one GitHub API call
func ObserveGitHubCall(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	GitHubCalls.WithLabelValues(operation, outcome).Inc()
}
