// Package metrics exposes Prometheus instrumentation for the auto-submit
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosubmit_runs_total",
			Help: "Total submission runs by site and terminal state",
		},
		[]string{"site", "state"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autosubmit_run_duration_seconds",
			Help:    "Duration of submission runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"site"},
	)

	ResolverFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosubmit_resolver_fallbacks_total",
			Help: "Semantic fallbacks after a static selector miss, by outcome",
		},
		[]string{"field", "outcome"},
	)

	CaptchaDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosubmit_captcha_detected_total",
			Help: "CAPTCHA challenges detected during submission runs",
		},
		[]string{"vendor"},
	)

	QuotaDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autosubmit_quota_denied_total",
			Help: "Tasks denied admission by the monthly quota gate",
		},
	)

	ArtifactCaptureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autosubmit_artifact_capture_failures_total",
			Help: "Failures while capturing diagnostic page artifacts",
		},
	)
)
