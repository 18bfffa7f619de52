package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	"github.com/handiism/image-downloader/internal/http"
)

// ErrNoImagesFound is returned when a page references no image URLs.
//
// This typically occurs when:
//   - The page builds its gallery with JavaScript
//   - Images are only referenced from CSS
//   - The URL does not point to an HTML page at all
var ErrNoImagesFound = errors.New("no images found on page")

// Getter fetches a URL and returns the fully read response.
type Getter interface {
	Get(ctx context.Context, rawURL string, onProgress func(written, total int64)) (*http.Response, error)
}

// Collector extracts image URLs from HTML pages.
//
// The following references are collected, in document order:
//   - <img src> and <img data-src> (lazy loading)
//   - every candidate of <img srcset> and <source srcset>
//   - <meta property="og:image">
//
// Relative URLs are resolved against the page URL, or against <base href>
// when the page declares one. data: URIs and non-http(s) schemes are
// dropped, and duplicates are removed keeping the first occurrence.
//
// Example usage:
//
//	client, _ := http.NewClient(http.Options{})
//	collector := scrape.NewCollector(client, logger)
//
//	urls, err := collector.Collect(ctx, "https://example.com/gallery")
//	if errors.Is(err, scrape.ErrNoImagesFound) {
//	    fmt.Println("nothing to download")
//	    return
//	}
//	n, err := manager.DownloadAll(ctx, urls)
type Collector struct {
	client Getter
	logger zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(client Getter, logger zerolog.Logger) *Collector {
	return &Collector{client: client, logger: logger}
}

// Collect fetches pageURL and returns the image URLs it references.
//
// Returns an *http.StatusError for non-200 answers and ErrNoImagesFound if
// the page references no images.
func (c *Collector) Collect(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	resp, err := c.client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, &http.StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	urls, err := ExtractImageURLs(resp.Body, resp.ContentType, base)
	if err != nil {
		return nil, err
	}

	c.logger.Info().Str("page", pageURL).Int("images", len(urls)).Msg("Collected image URLs")
	return urls, nil
}

// ExtractImageURLs parses an HTML document and returns the absolute image
// URLs it references, see Collector for the rules.
//
// contentType is the response Content-Type header; it may be empty, in
// which case the encoding is detected from the document itself.
func ExtractImageURLs(body []byte, contentType string, pageURL *url.URL) ([]string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = pageURL.ResolveReference(ref)
		}
	}

	seen := make(map[string]struct{})
	var urls []string
	add := func(raw string) {
		abs, ok := resolve(base, raw)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		urls = append(urls, abs)
	}

	doc.Find("img, source, meta").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "meta" {
			if prop, _ := s.Attr("property"); strings.EqualFold(prop, "og:image") {
				content, _ := s.Attr("content")
				add(content)
			}
			return
		}

		if src, ok := s.Attr("src"); ok {
			add(src)
		}
		if src, ok := s.Attr("data-src"); ok {
			add(src)
		}
		if srcset, ok := s.Attr("srcset"); ok {
			for _, candidate := range parseSrcset(srcset) {
				add(candidate)
			}
		}
	})

	if len(urls) == 0 {
		return nil, ErrNoImagesFound
	}
	return urls, nil
}

// parseSrcset returns the URLs of a srcset attribute, dropping the width
// and density descriptors.
//
// Candidates are separated by commas that follow a URL's descriptors or
// end the URL itself, so commas inside a URL are kept.
func parseSrcset(srcset string) []string {
	var out []string
	s := srcset
	for {
		s = strings.TrimLeftFunc(s, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		if s == "" {
			return out
		}

		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			end = len(s)
		}
		candidate := s[:end]
		s = s[end:]

		// "a.png,b.png": a trailing comma ends the candidate without descriptors.
		if trimmed := strings.TrimRight(candidate, ","); trimmed != candidate {
			out = append(out, trimmed)
			continue
		}
		out = append(out, candidate)
		s = skipDescriptors(s)
	}
}

// skipDescriptors returns s after the comma that ends the current
// candidate's descriptors. Commas inside parentheses do not count.
func skipDescriptors(s string) string {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return s[i+1:]
			}
		}
	}
	return ""
}

func resolve(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}
