// Package metrics exposes Prometheus instrumentation for image downloads.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Download metrics
var (
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_downloads_total",
			Help: "Total number of finished image download requests by outcome.",
		},
		[]string{"outcome"},
	)

	AttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "image_download_attempts_total",
			Help: "Total number of HTTP attempts made for image downloads.",
		},
	)

	BytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "image_download_bytes_total",
			Help: "Total number of payload bytes written to disk.",
		},
	)

	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_downloads_in_flight",
			Help: "Number of image download requests currently being processed.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		DownloadsTotal,
		AttemptsTotal,
		BytesTotal,
		InFlight,
	)
}
