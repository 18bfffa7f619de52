// Package download provides the download orchestration logic for
// fetching batches of image URLs.
//
// # Manager
//
// The Manager coordinates a batch:
//
//  1. Create the output directory
//  2. Derive a candidate filename for every URL
//  3. Fetch URLs concurrently on a bounded worker pool
//  4. Sniff every payload and fix its extension
//  5. Write files without ever overwriting an existing one
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, logger, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := manager.DownloadAll(ctx, urls)
//	fmt.Printf("%d of %d downloaded\n", n, len(urls))
//
// Or, without a config:
//
//	n, err := download.DownloadAll(ctx, urls, "images", 50, 20*time.Second, nil)
//
// # Concurrency
//
// At most settings.Concurrency requests are in flight. The batch as a whole
// is bounded by settings.BatchDeadline; requests that have not finished by
// then are cancelled and not counted.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// GetProgress can be polled from another goroutine.
//
// # Retry Logic
//
// Transport failures are retried immediately, up to MaxFetchAttempts in
// total. 401, 403 and 404 answers and empty bodies are never retried.
package download
