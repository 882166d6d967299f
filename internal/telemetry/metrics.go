// Package telemetry exposes the Prometheus metrics and OpenTelemetry tracing used
// across the troubleshooting pipeline.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pipelineRunsTotal counts finished runs.
	// Labels: outcome (local, no_evidence, web, web_empty, invalid, error)
	pipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oratriage",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Finished pipeline runs by outcome",
	}, []string{"outcome"})

	pipelineStageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "oratriage",
		Subsystem: "pipeline",
		Name:      "stage_seconds",
		Help:      "Pipeline stage latency",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	// webBackendRequestsTotal labels: backend (serper, brave, duckduckgo), status (ok, empty, error, missing_key)
	webBackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oratriage",
		Subsystem: "web",
		Name:      "backend_requests_total",
		Help:      "Search backend calls by backend and status",
	}, []string{"backend", "status"})

	// webFetchTotal labels: strategy (readability, structural), status (ok, empty, error)
	webFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oratriage",
		Subsystem: "web",
		Name:      "fetch_total",
		Help:      "Page text extraction attempts by strategy and status",
	}, []string{"strategy", "status"})

	webTierAcceptedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oratriage",
		Subsystem: "web",
		Name:      "tier_accepted_total",
		Help:      "Web evidence items accepted per collection tier",
	}, []string{"tier"})

	// solutionCitationIssuesTotal labels: kind (unknown_tag, uncited_line)
	solutionCitationIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oratriage",
		Subsystem: "solution",
		Name:      "citation_issues_total",
		Help:      "Citation problems found in generated guidance",
	}, []string{"kind"})
)

// RecordRun records a finished pipeline run.
func RecordRun(outcome string) {
	pipelineRunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long one pipeline stage took.
func ObserveStage(stage string, d time.Duration) {
	pipelineStageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func RecordBackend(backend, status string) {
	webBackendRequestsTotal.WithLabelValues(backend, status).Inc()
}

func RecordFetch(strategy, status string) {
	webFetchTotal.WithLabelValues(strategy, status).Inc()
}

func RecordTierAccepted(tier string, n int) {
	webTierAcceptedTotal.WithLabelValues(tier).Add(float64(n))
}

func RecordCitationIssues(kind string, n int) {
	if n > 0 {
		solutionCitationIssuesTotal.WithLabelValues(kind).Add(float64(n))
	}
}
