package download

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/image-downloader/internal/config"
	"github.com/handiism/image-downloader/internal/http"
	ioutils "github.com/handiism/image-downloader/internal/io"
	"github.com/handiism/image-downloader/internal/metrics"
	"github.com/handiism/image-downloader/internal/model"
	"github.com/handiism/image-downloader/internal/sniff"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager coordinates batch downloads.
type Manager struct {
	settings *config.Settings
	logger   zerolog.Logger
	fetcher  *Fetcher

	totalFiles     int32
	completedFiles int32
	succeededFiles int32
	receivedBytes  int64

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
//
// The HTTP client, including the optional proxy, is built once and shared
// by every request of every batch run through this Manager. Returns an
// error if the settings are invalid or the proxy settings cannot be turned
// into a client.
//
// Example:
//
//	manager, err := download.NewManager(settings, logger, func(e download.ProgressEvent) {
//	    fmt.Println(e.Message)
//	})
//	n, err := manager.DownloadAll(ctx, urls)
func NewManager(settings *config.Settings, logger zerolog.Logger, onProgress func(ProgressEvent)) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	client, err := http.NewClient(http.Options{
		Timeout:  settings.Timeout,
		ProxyURL: settings.Proxy().URL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	m := &Manager{
		settings:   settings,
		logger:     logger,
		onProgress: onProgress,
	}
	m.fetcher = NewFetcher(client, sniff.Default(),
		WithLogger(logger),
		WithRejectUnknown(settings.RejectUnknown),
		WithEvents(m.progress),
		WithByteCounter(func(n int64) { atomic.AddInt64(&m.receivedBytes, n) }),
	)
	return m, nil
}

// DownloadAll downloads every URL into the configured output directory and
// returns the number of files written.
//
// The output directory is created first; failing to do so is the only
// error that aborts the batch. Requests are submitted in input order to a
// pool of settings.Concurrency workers. The whole batch is bounded by
// settings.BatchDeadline: when it expires in-flight requests are cancelled,
// pending ones are never started, and none of them count.
//
// If ctx is cancelled the partial count is returned with ctx.Err().
func (m *Manager) DownloadAll(ctx context.Context, urls []string) (int, error) {
	dir := m.settings.OutputDir
	if err := ioutils.EnsureDir(dir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	log := m.logger.With().Str("batch", uuid.NewString()).Str("dir", dir).Logger()
	atomic.AddInt32(&m.totalFiles, int32(len(urls)))

	batchCtx, cancel := context.WithTimeout(ctx, m.settings.BatchDeadline)
	defer cancel()

	start := time.Now()
	log.Info().Int("urls", len(urls)).Int("concurrency", m.settings.Concurrency).Msg("Starting batch")

	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(m.settings.Concurrency)

	var succeeded, finished int32
	submitted := 0
	for _, rawURL := range urls {
		if gctx.Err() != nil {
			break
		}

		req := model.Request{
			URL:           rawURL,
			Dir:           dir,
			CandidateName: CandidateFileName(rawURL),
			Timeout:       m.settings.Timeout,
			Proxy:         m.settings.Proxy(),
		}
		log.Info().Str("url", req.URL).Str("file", req.CandidateName).Msg("Queued")
		m.progress(ProgressEvent{Message: fmt.Sprintf("Queued %s -> %s", req.URL, req.CandidateName), Level: LevelVerbose})

		submitted++
		g.Go(func() error {
			metrics.InFlight.Inc()
			defer metrics.InFlight.Dec()

			out := m.fetcher.Fetch(gctx, req)
			if gctx.Err() != nil {
				// Finished after the deadline or cancellation.
				return nil
			}
			atomic.AddInt32(&finished, 1)
			m.record(req, out, &succeeded)
			return nil
		})
	}

	// Workers never return errors.
	_ = g.Wait()

	count := int(atomic.LoadInt32(&succeeded))
	abandonedCount := len(urls) - int(finished)
	if abandonedCount > 0 {
		log.Warn().
			Int("abandoned", abandonedCount).
			Int("not_started", len(urls)-submitted).
			Msg("Batch deadline reached, requests abandoned")
		m.progress(ProgressEvent{Message: fmt.Sprintf("%d request(s) abandoned", abandonedCount), Level: LevelWarning})
	}

	log.Info().
		Int("succeeded", count).
		Int("total", len(urls)).
		Dur("elapsed", time.Since(start)).
		Msg("Batch finished")

	if err := ctx.Err(); err != nil {
		return count, err
	}
	return count, nil
}

// GetProgress returns current download progress.
//
// bytes counts every body byte received so far, including failed attempts
// and error pages, and grows while files are still being read.
func (m *Manager) GetProgress() (completed, succeeded, total int32, bytes int64) {
	return atomic.LoadInt32(&m.completedFiles), atomic.LoadInt32(&m.succeededFiles),
		atomic.LoadInt32(&m.totalFiles), atomic.LoadInt64(&m.receivedBytes)
}

func (m *Manager) record(req model.Request, out model.Outcome, succeeded *int32) {
	atomic.AddInt32(&m.completedFiles, 1)

	if !out.Succeeded {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Failed %s (%s): %v", req.URL, out.Kind, out.Err),
			Level:   LevelError,
		})
		return
	}

	atomic.AddInt32(succeeded, 1)
	atomic.AddInt32(&m.succeededFiles, 1)

	if out.Kind == model.KindUnsniffable {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %s (unrecognized format)", out.FileName), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %s", out.FileName), Level: LevelSuccess})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// DownloadAll downloads urls into dir with default settings otherwise and
// returns the number of files written.
//
// The logger is taken from ctx (see zerolog.Ctx). A nil proxy disables
// proxying.
//
// Example:
//
//	n, err := download.DownloadAll(ctx, urls, "images", 50, 20*time.Second, nil)
func DownloadAll(ctx context.Context, urls []string, dir string, concurrency int, timeout time.Duration, proxy *model.Proxy) (int, error) {
	settings := config.DefaultSettings()
	settings.OutputDir = dir
	settings.Concurrency = concurrency
	settings.Timeout = timeout
	if proxy != nil && proxy.Address != "" {
		settings.ProxyType = proxy.Scheme
		if settings.ProxyType == "" {
			settings.ProxyType = "http"
		}
		settings.ProxyAddress = proxy.Address
	}
	manager, err := NewManager(settings, *zerolog.Ctx(ctx), nil)
	if err != nil {
		return 0, err
	}
	return manager.DownloadAll(ctx, urls)
}
