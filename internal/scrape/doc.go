// Package scrape turns user input into the list of image URLs to download.
//
// The package handles two sources:
//
//  1. Plain text URL lists, one URL per line
//  2. HTML pages whose images should all be downloaded
//
// # URL Lists
//
//	urls, err := scrape.ReadURLList(os.Stdin)
//
// Blank lines and lines starting with "#" are ignored:
//
//	# cats
//	https://example.com/cat.jpg
//	https://example.com/kitten.png
//
// # Page Scraping
//
// Use a Collector to extract every image referenced by a page:
//
//	collector := scrape.NewCollector(client, logger)
//	urls, err := collector.Collect(ctx, "https://example.com/gallery")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Pages are converted to UTF-8 before parsing, so legacy encodings such as
// windows-1252 or Shift_JIS are handled transparently.
package scrape
