package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the per-request timeout used when Options.Timeout is zero.
const DefaultTimeout = 20 * time.Second

// Browser header values. Many image hosts refuse or rewrite responses for
// clients that don't look like a desktop browser.
const (
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"
	BrowserAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	BrowserEncoding  = "gzip, deflate, br, zstd"
)

// BrowserHeaders returns a fresh copy of the fixed header set sent with
// every request.
func BrowserHeaders() http.Header {
	return http.Header{
		"User-Agent":      {BrowserUserAgent},
		"Accept":          {BrowserAccept},
		"Accept-Encoding": {BrowserEncoding},
	}
}

// Options configures a Client.
type Options struct {
	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration

	// ProxyURL routes every request through a proxy, e.g.
	// "http://127.0.0.1:8080" or "socks5://127.0.0.1:1080". Empty disables it.
	ProxyURL string
}

// StatusError reports a response whose status code the caller treats as
// a failure. Get itself never returns it.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *StatusError) Is(target error) bool {
	_, ok := target.(*StatusError)
	return ok
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client wraps HTTP operations with browser-like configuration.
//
// Client provides:
//   - A fixed browser header set (User-Agent, Accept, Accept-Encoding)
//   - Optional http, https or socks5 proxy
//   - Transparent gzip, deflate, brotli and zstd decoding
//   - Body capture with progress tracking
//
// Example usage:
//
//	client, err := NewClient(Options{Timeout: 20 * time.Second})
//
//	// Fetch an image payload
//	resp, err := client.Get(ctx, "https://example.com/cat.jpg", nil)
//	fmt.Println(resp.StatusCode, len(resp.Body))
type Client struct {
	httpClient *http.Client
	headers    http.Header
}

// NewClient creates a new Client.
//
// The transport is a clone of http.DefaultTransport, so connection pooling
// and HTTP/2 settings are preserved. Returns an error if ProxyURL cannot be
// parsed.
func NewClient(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		if proxyURL.Host == "" {
			return nil, fmt.Errorf("parse proxy url: missing host in %q", opts.ProxyURL)
		}
		base.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newCompressionTransport(base),
		},
		headers: BrowserHeaders(),
	}, nil
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: &buf,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes, -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and reads the whole body into memory.
//
// Get does not judge the status code: any response the server produced is
// returned so the caller can classify it. An error is
// returned only for transport failures, including failures while reading
// the body. The body is always closed before Get returns.
//
// Example:
//
//	resp, err := client.Get(ctx, imageURL, func(written, total int64) {
//	    fmt.Printf("%d bytes\r", written)
//	})
func (c *Client) Get(ctx context.Context, rawURL string, onProgress func(written, total int64)) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	var writer io.Writer = &buf
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   &buf,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        buf.Bytes(),
	}, nil
}
