package model

// FailureKind discriminates why a request did not (fully) succeed.
type FailureKind int

const (
	// KindNone means the request succeeded without warnings.
	KindNone FailureKind = iota

	// KindRejected means the server answered 401, 403 or 404.
	// Not retried and nothing is written.
	KindRejected

	// KindExhausted means every transport attempt failed.
	KindExhausted

	// KindEmpty means the server answered with a zero-length body.
	KindEmpty

	// KindUnsniffable means the payload format could not be mapped to a
	// supported extension. By default this is a soft warning: the file is
	// still written under its candidate name and Succeeded stays true.
	KindUnsniffable

	// KindWriteExhausted means the collision loop ran out of attempts.
	KindWriteExhausted

	// KindAbandoned means the request did not complete before the batch
	// deadline or the batch was cancelled.
	KindAbandoned
)

// String returns a short, metric-label friendly name for the kind.
func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindRejected:
		return "rejected"
	case KindExhausted:
		return "exhausted"
	case KindEmpty:
		return "empty"
	case KindUnsniffable:
		return "unsniffable"
	case KindWriteExhausted:
		return "write_exhausted"
	case KindAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Outcome is the result of fetching a single Request.
type Outcome struct {
	// Succeeded reports whether a file was written for the request.
	Succeeded bool

	// FileName is the final name of the written file, relative to the
	// request's Dir. Empty when nothing was written.
	FileName string

	// Format is the sniffed format tag, e.g. "png" or "unknown".
	Format string

	// Kind classifies the failure, or the soft warning on success.
	Kind FailureKind

	// Attempts is the number of HTTP attempts made (at most 3).
	Attempts int

	// StatusCode is the last HTTP status received, 0 if none.
	StatusCode int

	// Bytes is the payload size written to disk.
	Bytes int64

	// Err holds the last underlying error, if any.
	Err error
}
