package scrape

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadURLList reads one URL per line.
//
// Surrounding whitespace is trimmed, blank lines and lines starting with
// "#" are skipped, and only http and https URLs are kept. Order and
// duplicates are preserved.
//
// Example:
//
//	f, _ := os.Open("urls.txt")
//	defer f.Close()
//	urls, err := scrape.ReadURLList(f)
func ReadURLList(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if isHTTPURL(line) {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}

	return urls, nil
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// SplitURLs splits s on whitespace and keeps the http and https URLs, in
// order. A comma ending a token is treated as a list separator and dropped;
// commas inside a URL are kept.
//
// Example:
//
//	SplitURLs("https://a.example/1.png, https://b.example/2.jpg")
//	// [https://a.example/1.png https://b.example/2.jpg]
//	SplitURLs("https://res.example/w_100,h_100/cat.jpg")
//	// [https://res.example/w_100,h_100/cat.jpg]
func SplitURLs(s string) []string {
	fields := strings.Fields(s)

	urls := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, ",")
		if isHTTPURL(f) {
			urls = append(urls, f)
		}
	}
	return urls
}
