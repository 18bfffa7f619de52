package model

import (
	"strings"
	"time"
)

// Request represents a single URL scheduled for download.
//
// Request is immutable once constructed; the dispatcher creates one per
// input URL and hands it to a Fetcher by value.
type Request struct {
	// URL is the source URL exactly as supplied by the caller.
	URL string

	// Dir is the destination directory. All files land directly in it.
	Dir string

	// CandidateName is the filename derived from the URL. The fetcher may
	// change its extension after sniffing the payload.
	CandidateName string

	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration

	// Proxy records the batch proxy for logging. It is informational: the
	// transport is the shared client the Manager built from the same
	// settings, so changing it per request has no effect.
	Proxy *Proxy
}

// Proxy describes a transport proxy as a scheme and a host:port address.
//
// Supported schemes are "http", "https" and "socks5".
type Proxy struct {
	Scheme  string
	Address string
}

// URL returns the proxy as a URL string, e.g. "http://127.0.0.1:8080".
//
// A missing scheme defaults to "http".
func (p *Proxy) URL() string {
	if p == nil || p.Address == "" {
		return ""
	}
	scheme := strings.ToLower(p.Scheme)
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + p.Address
}
