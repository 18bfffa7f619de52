package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddress is used by NewHTTPServer when no address is given.
const DefaultAddress = "localhost:9090"

// NewHTTPServer creates an HTTP server that exposes Prometheus metrics at /metrics.
func NewHTTPServer(address string) *http.Server {
	if address == "" {
		address = DefaultAddress
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:    address,
		Handler: mux,
	}
}
