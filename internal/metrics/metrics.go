package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dubbing_upstream_request_duration_seconds",
		Help:    "Duration of calls to the dubbing backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	DubRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dubbing_dub_requests_total",
		Help: "Dub requests sent, by outcome",
	}, []string{"status"})

	PreferenceMirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dubbing_preference_mirror_failures_total",
		Help: "Language preference updates that could not be persisted",
	})

	SupersededResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dubbing_superseded_results_total",
		Help: "Results discarded because a newer request for the same user had started",
	}, []string{"kind"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dubbing_uploads_total",
		Help: "Source video uploads, by outcome",
	}, []string{"status"})
)
