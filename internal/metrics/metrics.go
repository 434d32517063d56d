// Package metrics holds Prometheus instruments that are used across
// Promgen.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanizio/promgen/internal/version"
)

var (
	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "promgen_build_info",
			Help: "Always 1; the version label carries the build version.",
		}, []string{"version"})

	SecretKeyFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promgen_secret_key_fallback_total",
			Help: "Number of times SECRET_KEY was unset and a random key was generated.",
		})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promgen_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "code"})

	TasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promgen_tasks_total",
			Help: "Background tasks run, by execution mode and outcome.",
		}, []string{"mode", "outcome"})

	TasksQueued = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promgen_tasks_queued",
			Help: "Tasks waiting in the in-process broker.",
		})
)

func init() {
	prometheus.MustRegister(
		BuildInfo,
		SecretKeyFallbackTotal,
		HTTPRequestsTotal,
		TasksTotal,
		TasksQueued,
	)
	BuildInfo.WithLabelValues(version.Version).Set(1)
}
