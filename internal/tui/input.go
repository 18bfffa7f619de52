package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/handiism/image-downloader/internal/config"
	"github.com/handiism/image-downloader/internal/http"
	"github.com/handiism/image-downloader/internal/scrape"
)

// ErrNoURLs is returned when the input yields no http or https URLs.
var ErrNoURLs = errors.New("no http(s) URLs in input")

// ResolveInput turns what the user typed into the URLs to download.
//
// With scrapePage set, input is a page whose images are collected.
// Otherwise input is either the path of a URL list file or one or more
// URLs separated by commas or spaces. The returned source describes where
// the URLs came from and is empty for literal URLs.
func ResolveInput(ctx context.Context, input string, scrapePage bool, settings *config.Settings, logger zerolog.Logger) (source string, urls []string, err error) {
	if scrapePage {
		client, err := http.NewClient(http.Options{
			Timeout:  settings.Timeout,
			ProxyURL: settings.Proxy().URL(),
		})
		if err != nil {
			return "", nil, err
		}
		urls, err := scrape.NewCollector(client, logger).Collect(ctx, input)
		if err != nil {
			return "", nil, err
		}
		return input, urls, nil
	}

	if info, statErr := os.Stat(input); statErr == nil && !info.IsDir() {
		f, err := os.Open(input)
		if err != nil {
			return "", nil, err
		}
		defer f.Close()

		urls, err := scrape.ReadURLList(f)
		if err != nil {
			return "", nil, err
		}
		if len(urls) == 0 {
			return "", nil, fmt.Errorf("%s: %w", input, ErrNoURLs)
		}
		return input, urls, nil
	}

	urls = scrape.SplitURLs(input)
	if len(urls) == 0 {
		return "", nil, ErrNoURLs
	}
	return "", urls, nil
}
