package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/handiism/image-downloader/internal/config"
	"github.com/handiism/image-downloader/internal/download"
	"github.com/handiism/image-downloader/internal/http"
	"github.com/handiism/image-downloader/internal/metrics"
	"github.com/handiism/image-downloader/internal/scrape"
)

func main() {
	// Command line flags
	var (
		urlsFlag        = flag.String("url", "", "Image URL(s) to download (whitespace or newline separated)")
		inputFlag       = flag.String("input", "", "File with one URL per line, or - for stdin")
		pageFlag        = flag.String("page", "", "Web page to download all images from")
		outputFlag      = flag.String("output", "", "Output directory (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file")
		concurrencyFlag = flag.Int("concurrency", 0, "Maximum parallel downloads (overrides config)")
		timeoutFlag     = flag.Duration("timeout", 0, "Per-request timeout, e.g. 20s (overrides config)")
		deadlineFlag    = flag.Duration("deadline", 0, "Deadline for the whole batch, e.g. 90s (overrides config)")
		proxyTypeFlag   = flag.String("proxy-type", "", "Proxy type: http, https or socks5")
		proxyFlag       = flag.String("proxy", "", "Proxy address host:port")
		strictFlag      = flag.Bool("strict", false, "Do not save payloads of unrecognized format")
		verboseFlag     = flag.Bool("verbose", false, "Show queued files and renames")
		logLevelFlag    = flag.String("log-level", "", "Log level: debug, info, warn, error")
		metricsFlag     = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
		dryRunFlag      = flag.Bool("dry-run", false, "List URLs without downloading")
	)

	flag.Parse()

	if *urlsFlag == "" && *inputFlag == "" && *pageFlag == "" && flag.NArg() == 0 {
		fmt.Println("Image Downloader - Download images in bulk")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println(`  imgdl -url "<URL> <URL>..." [options]`)
		fmt.Println("  imgdl -input urls.txt [options]")
		fmt.Println("  imgdl -page <URL> [options]")
		fmt.Println("  imgdl <URL>... [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: imgdl-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// .env is optional
	_ = godotenv.Load()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *concurrencyFlag > 0 {
		settings.Concurrency = *concurrencyFlag
	}
	if *timeoutFlag > 0 {
		settings.Timeout = *timeoutFlag
	}
	if *deadlineFlag > 0 {
		settings.BatchDeadline = *deadlineFlag
	}
	if *proxyFlag != "" {
		settings.ProxyAddress = *proxyFlag
		if settings.ProxyType == "" || settings.ProxyType == "none" {
			settings.ProxyType = "http"
		}
	}
	if *proxyTypeFlag != "" {
		settings.ProxyType = *proxyTypeFlag
	}
	if *strictFlag {
		settings.RejectUnknown = true
	}
	if *logLevelFlag != "" {
		settings.LogLevel = *logLevelFlag
	}
	if *metricsFlag != "" {
		settings.MetricsAddress = *metricsFlag
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(settings.LogLevel, settings.LogFormat, os.Stderr)

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	if settings.MetricsAddress != "" {
		server := metrics.NewHTTPServer(settings.MetricsAddress)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				logger.Error().Err(err).Str("address", settings.MetricsAddress).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		logger.Info().Str("address", settings.MetricsAddress).Msg("Serving metrics")
	}

	urls, err := collectURLs(ctx, settings, logger, *urlsFlag, *inputFlag, *pageFlag, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error collecting URLs: %v\n", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "No http(s) URLs to download")
		os.Exit(1)
	}

	fmt.Println("Image Downloader")
	fmt.Println("----------------------------------------")
	fmt.Printf("%d URL(s) -> %s\n\n", len(urls), settings.OutputDir)

	if *dryRunFlag {
		for _, u := range urls {
			fmt.Printf("  %s -> %s\n", u, download.CandidateFileName(u))
		}
		fmt.Println("\n[Dry run - not downloading]")
		return
	}

	manager, err := download.NewManager(settings, logger, eventPrinter(os.Stdout, *verboseFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating downloader: %v\n", err)
		os.Exit(1)
	}

	n, err := manager.DownloadAll(ctx, urls)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Printf("\nDownload cancelled after %d file(s).\n", n)
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	_, _, total, bytes := manager.GetProgress()
	fmt.Println()
	fmt.Println("----------------------------------------")
	fmt.Printf("Complete! Downloaded %d/%d files (%.2f MB)\n", n, total, float64(bytes)/1024/1024)
}

// collectURLs gathers URLs from every source, in flag order.
func collectURLs(ctx context.Context, settings *config.Settings, logger zerolog.Logger, urlList, input, page string, args []string) ([]string, error) {
	var urls []string
	urls = append(urls, scrape.SplitURLs(urlList)...)
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			urls = append(urls, arg)
		}
	}

	if input != "" {
		var r io.Reader = os.Stdin
		if input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		listed, err := scrape.ReadURLList(r)
		if err != nil {
			return nil, err
		}
		urls = append(urls, listed...)
	}

	if page != "" {
		client, err := http.NewClient(http.Options{
			Timeout:  settings.Timeout,
			ProxyURL: settings.Proxy().URL(),
		})
		if err != nil {
			return nil, err
		}
		found, err := scrape.NewCollector(client, logger).Collect(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("scrape %s: %w", page, err)
		}
		urls = append(urls, found...)
	}

	return urls, nil
}

// eventPrinter returns a progress callback writing one line per event to w.
// Verbose events are dropped unless verbose is set.
func eventPrinter(w io.Writer, verbose bool) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		prefix := ""
		switch event.Level {
		case download.LevelVerbose:
			if !verbose {
				return
			}
			prefix = "    "
		case download.LevelError:
			prefix = "[x] "
		case download.LevelWarning:
			prefix = "[!] "
		case download.LevelSuccess:
			prefix = "[+] "
		case download.LevelInfo:
			prefix = "[i] "
		default:
			prefix = "    "
		}
		fmt.Fprintln(w, prefix+event.Message)
	}
}
