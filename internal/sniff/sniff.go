package sniff

// Format is a canonical format tag such as "jpg" or "html".
type Format string

// Known format tags.
const (
	Unknown Format = "unknown"

	JPG  Format = "jpg"
	PNG  Format = "png"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	WEBP Format = "webp"
	TIFF Format = "tiff"
	XML  Format = "xml"
	HTML Format = "html"
	EXR  Format = "exr"
	RGB  Format = "rgb"
	PBM  Format = "pbm"
	PGM  Format = "pgm"
	PPM  Format = "ppm"
	RAST Format = "rast"
	XBM  Format = "xbm"
)

// Normalize maps format aliases to their canonical tag. The only alias in
// use is "jpeg", which becomes "jpg".
func Normalize(f Format) Format {
	switch f {
	case "jpeg", "JPEG", "JPG":
		return JPG
	case "":
		return Unknown
	}
	return f
}

// Detector inspects a payload and reports a format when it recognizes one.
//
// Detectors must be pure and must tolerate buffers of any length.
type Detector func(data []byte) (Format, bool)

// Sniffer evaluates an ordered, immutable list of detectors.
type Sniffer struct {
	detectors []Detector
}

// NewSniffer creates a Sniffer over the given detectors. The slice is copied
// so later changes by the caller have no effect.
//
// Example:
//
//	s := NewSniffer(DefaultDetectors()...)
//	format := s.Sniff(body)
func NewSniffer(detectors ...Detector) *Sniffer {
	ds := make([]Detector, len(detectors))
	copy(ds, detectors)
	return &Sniffer{detectors: ds}
}

// Default returns a Sniffer using DefaultDetectors.
func Default() *Sniffer {
	return NewSniffer(DefaultDetectors()...)
}

// Sniff returns the first detector match, normalized, or Unknown.
func (s *Sniffer) Sniff(data []byte) Format {
	for _, detect := range s.detectors {
		if f, ok := detect(data); ok {
			return Normalize(f)
		}
	}
	return Unknown
}
