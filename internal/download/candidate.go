package download

import (
	"net/url"
	"strings"
)

// encodedAmpersand is an HTML-escaped query separator left behind by some
// link extractors.
const encodedAmpersand = "&amp;"

// CandidateFileName derives the initial filename for a URL.
//
// The URL is cut at the first "?" and then at the first "&amp;", and the
// last path segment of what remains is returned, percent-decoded. Trailing
// slashes are ignored. A separator found at position 0 leaves the input
// unchanged.
//
// Example:
//
//	CandidateFileName("https://cdn.example.com/a/photo.jpeg?w=640")  // "photo.jpeg"
//	CandidateFileName("https://example.com/x/cat%20face.png&amp;s=1") // "cat face.png"
//	CandidateFileName("https://example.com/gallery/")                // "gallery"
func CandidateFileName(rawURL string) string {
	name := splitFirst(rawURL, "?")
	name = splitFirst(name, encodedAmpersand)
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return name
}

// TruncateEncodedAmpersand drops everything from the first "&amp;" on.
func TruncateEncodedAmpersand(rawURL string) string {
	if i := strings.Index(rawURL, encodedAmpersand); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

func splitFirst(s, sep string) string {
	if i := strings.Index(s, sep); i > 0 {
		return s[:i]
	}
	return s
}
