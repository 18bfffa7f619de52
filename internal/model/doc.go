// Package model defines the core data structures shared by the
// image-downloader packages.
//
// # Request
//
// Request describes one URL to fetch. The batch dispatcher builds one per
// input URL and never mutates it afterwards:
//
//	req := model.Request{
//	    URL:           "https://example.com/a/photo.jpeg?size=large",
//	    Dir:           "/tmp/images",
//	    CandidateName: "photo.jpeg",
//	    Timeout:       20 * time.Second,
//	}
//
// # Outcome
//
// Outcome is produced exactly once per Request. Only Succeeded is used for
// the batch tally; Kind, StatusCode and Err are diagnostics:
//
//	if !outcome.Succeeded && outcome.Kind == model.KindRejected {
//	    fmt.Println("server refused", outcome.StatusCode)
//	}
//
// # Proxy
//
// Proxy is the optional transport proxy shared by every request of a batch:
//
//	p := &model.Proxy{Scheme: "socks5", Address: "127.0.0.1:1080"}
//	fmt.Println(p.URL()) // socks5://127.0.0.1:1080
package model
