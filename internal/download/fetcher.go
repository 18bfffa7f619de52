package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/image-downloader/internal/http"
	ioutils "github.com/handiism/image-downloader/internal/io"
	"github.com/handiism/image-downloader/internal/metrics"
	"github.com/handiism/image-downloader/internal/model"
	"github.com/handiism/image-downloader/internal/sniff"
)

// MaxFetchAttempts is the number of HTTP attempts made per request before
// it is given up. Retries are immediate.
const MaxFetchAttempts = 3

// ErrEmptyBody is recorded in Outcome.Err when the server sent no content.
var ErrEmptyBody = errors.New("download: empty response body")

// ErrUnsupportedFormat is recorded in Outcome.Err when the payload could
// not be mapped to a supported format.
var ErrUnsupportedFormat = errors.New("download: unsupported or unknown format")

// rejectedStatus are answers that are never retried and never written.
var rejectedStatus = map[int]struct{}{
	401: {},
	403: {},
	404: {},
}

// Getter fetches a URL and returns the fully read response.
//
// *http.Client implements Getter.
type Getter interface {
	Get(ctx context.Context, rawURL string, onProgress func(written, total int64)) (*http.Response, error)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRejectUnknown makes payloads of unknown or unsupported format a hard
// failure instead of a soft warning.
func WithRejectUnknown(reject bool) FetcherOption {
	return func(f *Fetcher) {
		f.rejectUnknown = reject
	}
}

// WithLogger sets the logger used for per-request diagnostics.
func WithLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithEvents sets a callback receiving verbose progress events, such as
// files renamed to match their content.
func WithEvents(onEvent func(ProgressEvent)) FetcherOption {
	return func(f *Fetcher) {
		f.onEvent = onEvent
	}
}

// WithByteCounter sets a callback receiving the number of body bytes read
// since its previous call. It runs while bodies are read, for every
// attempt and every status code.
func WithByteCounter(onBytes func(n int64)) FetcherOption {
	return func(f *Fetcher) {
		f.onBytes = onBytes
	}
}

// Fetcher downloads a single URL and materializes it on disk.
//
// A Fetch call walks through these states:
//
//  1. Attempting: GET the URL, bounded by Request.Timeout. Transport
//     failures are retried immediately, up to MaxFetchAttempts in total.
//  2. 401, 403 and 404 answers end the request as rejected.
//  3. An empty body ends the request without retry.
//  4. Materializing: sniff the payload, fix the extension and write the
//     file with an exclusive create.
//
// Fetch never returns an error; everything is reported through the Outcome.
// A Fetcher is safe for concurrent use.
//
// Example:
//
//	client, _ := http.NewClient(http.Options{Timeout: 20 * time.Second})
//	fetcher := NewFetcher(client, sniff.Default(), WithLogger(logger))
//
//	out := fetcher.Fetch(ctx, model.Request{
//	    URL:           "https://example.com/cat.jpeg",
//	    Dir:           "images",
//	    CandidateName: "cat.jpeg",
//	    Timeout:       20 * time.Second,
//	})
//	fmt.Println(out.Succeeded, out.FileName) // true cat.jpg
type Fetcher struct {
	client        Getter
	sniffer       *sniff.Sniffer
	logger        zerolog.Logger
	rejectUnknown bool
	onEvent       func(ProgressEvent)
	onBytes       func(n int64)
}

// NewFetcher creates a Fetcher. A nil sniffer uses sniff.Default().
func NewFetcher(client Getter, sniffer *sniff.Sniffer, opts ...FetcherOption) *Fetcher {
	if sniffer == nil {
		sniffer = sniff.Default()
	}
	f := &Fetcher{
		client:  client,
		sniffer: sniffer,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads req and reports what happened.
//
// Cancelling ctx stops further attempts and prevents the write; the
// outcome is then KindAbandoned.
func (f *Fetcher) Fetch(ctx context.Context, req model.Request) model.Outcome {
	out := f.fetch(ctx, req)
	metrics.DownloadsTotal.WithLabelValues(out.Kind.String()).Inc()
	return out
}

func (f *Fetcher) fetch(ctx context.Context, req model.Request) model.Outcome {
	logCtx := f.logger.With().Str("url", req.URL)
	if proxy := req.Proxy.URL(); proxy != "" {
		logCtx = logCtx.Str("proxy", proxy)
	}
	log := logCtx.Logger()
	target := TruncateEncodedAmpersand(req.URL)

	var (
		out  model.Outcome
		resp *http.Response
		err  error
	)

	for out.Attempts < MaxFetchAttempts && ctx.Err() == nil {
		out.Attempts++
		metrics.AttemptsTotal.Inc()

		resp, err = f.attempt(ctx, target, req.Timeout)
		if err == nil {
			break
		}
		out.Err = err
		log.Debug().Err(err).Int("attempt", out.Attempts).Msg("Attempt failed")
	}

	if resp == nil {
		if ctx.Err() != nil {
			return abandoned(out, ctx.Err())
		}
		out.Kind = model.KindExhausted
		log.Error().Err(out.Err).Int("attempts", out.Attempts).Msg("Download failed after retries")
		return out
	}

	out.Err = nil
	out.StatusCode = resp.StatusCode

	if _, ok := rejectedStatus[resp.StatusCode]; ok {
		out.Kind = model.KindRejected
		out.Err = &http.StatusError{URL: req.URL, StatusCode: resp.StatusCode}
		log.Warn().Int("status", resp.StatusCode).Msg("Server refused request")
		return out
	}

	if len(resp.Body) == 0 {
		out.Kind = model.KindEmpty
		out.Err = ErrEmptyBody
		log.Warn().Int("status", resp.StatusCode).Msg("Empty response body")
		return out
	}

	if ctx.Err() != nil {
		return abandoned(out, ctx.Err())
	}

	return f.materialize(out, req, resp.Body, log)
}

// attempt performs one GET bounded by timeout.
func (f *Fetcher) attempt(ctx context.Context, target string, timeout time.Duration) (*http.Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return f.client.Get(ctx, target, f.countBytes())
}

// countBytes turns the client's running total into deltas for onBytes.
func (f *Fetcher) countBytes() func(written, total int64) {
	if f.onBytes == nil {
		return nil
	}
	var last int64
	return func(written, _ int64) {
		if delta := written - last; delta > 0 {
			f.onBytes(delta)
		}
		last = written
	}
}

func (f *Fetcher) event(level ProgressLevel, format string, args ...any) {
	if f.onEvent != nil {
		f.onEvent(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: level})
	}
}

func (f *Fetcher) materialize(out model.Outcome, req model.Request, body []byte, log zerolog.Logger) model.Outcome {
	format := f.sniffer.Sniff(body)
	out.Format = string(format)

	name, ok := ioutils.ResolveFileName(req.CandidateName, format)
	if !ok {
		out.Kind = model.KindUnsniffable
		out.Err = ErrUnsupportedFormat
		if f.rejectUnknown {
			log.Warn().Str("format", string(format)).Msg("Unsupported format, not writing")
			return out
		}
		log.Warn().Str("format", string(format)).Str("file", name).Msg("Unsupported format, keeping original name")
	} else if name != filepath.Base(req.CandidateName) {
		log.Info().Str("from", req.CandidateName).Str("to", name).Msg("Renamed to match content")
		f.event(LevelVerbose, "Renamed %s -> %s (content is %s)", req.CandidateName, name, format)
	}

	written, err := ioutils.WriteExclusive(req.Dir, name, body)
	if err != nil {
		out.Kind = model.KindWriteExhausted
		out.Err = err
		log.Error().Err(err).Str("file", name).Msg("Could not write file")
		return out
	}

	if written != name {
		log.Info().Str("from", name).Str("to", written).Msg("Name taken, wrote copy")
		f.event(LevelVerbose, "%s already exists, saved as %s", name, written)
	}

	out.Succeeded = true
	out.FileName = written
	out.Bytes = int64(len(body))
	metrics.BytesTotal.Add(float64(len(body)))
	log.Debug().Str("file", written).Str("format", out.Format).Int("bytes", len(body)).Msg("Saved")
	return out
}

func abandoned(out model.Outcome, err error) model.Outcome {
	out.Kind = model.KindAbandoned
	out.Err = err
	return out
}
