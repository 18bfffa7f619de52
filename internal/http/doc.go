// Package http provides the HTTP client used to fetch images and pages.
//
// The Client in this package handles:
//   - A fixed browser header set, since many image hosts reject other clients
//   - Optional proxy configuration (http, https, socks5)
//   - Decoding of gzip, deflate, brotli and zstd responses
//   - Reading bodies into memory with progress tracking
//
// # Basic Usage
//
//	client, err := http.NewClient(http.Options{
//	    Timeout:  20 * time.Second,
//	    ProxyURL: "socks5://127.0.0.1:1080",
//	})
//
//	// Fetch an image; status codes are left to the caller
//	resp, err := client.Get(ctx, imageURL, nil)
//	if resp.StatusCode != 200 {
//	    return &http.StatusError{URL: imageURL, StatusCode: resp.StatusCode}
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
