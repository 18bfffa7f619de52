package sniff

import (
	"bytes"
	"image"

	// Decoders registered for the header fallback.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// JPEG markers.
var (
	soiApp0  = []byte{0xff, 0xd8, 0xff, 0xe0}
	soiApp1  = []byte{0xff, 0xd8, 0xff, 0xe1}
	soiApp2  = []byte{0xff, 0xd8, 0xff, 0xe2}
	soiApp14 = []byte{0xff, 0xd8, 0xff, 0xee}
	soiDQT   = []byte{0xff, 0xd8, 0xff, 0xdb}
)

// DefaultDetectors returns the standard detector list. A new slice is built
// on every call.
func DefaultDetectors() []Detector {
	return []Detector{
		DetectJPEG,
		DetectPNG,
		DetectGIF,
		DetectTIFF,
		DetectRGB,
		DetectPNM,
		DetectRast,
		DetectXBM,
		DetectBMP,
		DetectWEBP,
		DetectEXR,
		DetectHTML,
		DetectXML,
		DetectPermissiveJPEG,
		DetectDecodable,
	}
}

// hasAt reports whether data holds sig starting at offset off.
func hasAt(data []byte, off int, sig []byte) bool {
	if off < 0 || len(data) < off+len(sig) {
		return false
	}
	return bytes.Equal(data[off:off+len(sig)], sig)
}

// DetectJPEG matches the baseline JFIF (SOI+APP0) and Exif (SOI+APP1) layouts.
func DetectJPEG(data []byte) (Format, bool) {
	if hasAt(data, 0, soiApp0) && hasAt(data, 6, []byte("JFIF")) {
		return JPG, true
	}
	if hasAt(data, 0, soiApp1) && hasAt(data, 6, []byte("Exif")) {
		return JPG, true
	}
	return "", false
}

// DetectPermissiveJPEG matches JPEGs that skip the APP0 marker: an ICC
// profile (APP2), an Adobe marker (APP14), or a quantization table right
// after SOI.
func DetectPermissiveJPEG(data []byte) (Format, bool) {
	switch {
	case hasAt(data, 0, soiApp2) && hasAt(data, 6, []byte("ICC_PROFILE")):
		return "jpeg", true
	case hasAt(data, 0, soiApp14) && hasAt(data, 6, []byte("Adobe")):
		return "jpeg", true
	case hasAt(data, 0, soiDQT):
		return "jpeg", true
	}
	return "", false
}

// DetectPNG matches the 8-byte PNG signature.
func DetectPNG(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte("\x89PNG\r\n\x1a\n")) {
		return PNG, true
	}
	return "", false
}

// DetectGIF matches GIF87a and GIF89a.
func DetectGIF(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte("GIF87a")) || hasAt(data, 0, []byte("GIF89a")) {
		return GIF, true
	}
	return "", false
}

// DetectTIFF matches big and little endian TIFF headers.
func DetectTIFF(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte("MM\x00\x2a")) || hasAt(data, 0, []byte("II\x2a\x00")) {
		return TIFF, true
	}
	return "", false
}

// DetectRGB matches SGI image files.
func DetectRGB(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte{0x01, 0xda}) {
		return RGB, true
	}
	return "", false
}

// DetectPNM matches the netpbm family (P1..P6 followed by whitespace).
func DetectPNM(data []byte) (Format, bool) {
	if len(data) < 3 || data[0] != 'P' {
		return "", false
	}
	switch data[2] {
	case ' ', '\t', '\n', '\r':
	default:
		return "", false
	}
	switch data[1] {
	case '1', '4':
		return PBM, true
	case '2', '5':
		return PGM, true
	case '3', '6':
		return PPM, true
	}
	return "", false
}

// DetectRast matches Sun raster files.
func DetectRast(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte{0x59, 0xa6, 0x6a, 0x95}) {
		return RAST, true
	}
	return "", false
}

// DetectXBM matches X bitmaps.
func DetectXBM(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte("#define ")) {
		return XBM, true
	}
	return "", false
}

// DetectBMP matches Windows bitmaps.
func DetectBMP(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte("BM")) {
		return BMP, true
	}
	return "", false
}

// DetectWEBP matches a RIFF container carrying WEBP.
func DetectWEBP(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte("RIFF")) && hasAt(data, 8, []byte("WEBP")) {
		return WEBP, true
	}
	return "", false
}

// DetectEXR matches OpenEXR files.
func DetectEXR(data []byte) (Format, bool) {
	if hasAt(data, 0, []byte{0x76, 0x2f, 0x31, 0x01}) {
		return EXR, true
	}
	return "", false
}

// DetectHTML matches payloads containing "<html", "<HTML" or a doctype
// declaration in any letter case.
func DetectHTML(data []byte) (Format, bool) {
	if bytes.Contains(data, []byte("<html")) || bytes.Contains(data, []byte("<HTML")) {
		return HTML, true
	}
	if containsFold(data, []byte("<!doctype")) {
		return HTML, true
	}
	return "", false
}

// DetectXML matches payloads containing "<xml" or an XML declaration.
func DetectXML(data []byte) (Format, bool) {
	if bytes.Contains(data, []byte("<xml")) || bytes.Contains(data, []byte("<?xml ")) {
		return XML, true
	}
	return "", false
}

// DetectDecodable asks the registered image decoders to parse the header.
// It only reads as much as DecodeConfig needs and never decodes pixels.
func DetectDecodable(data []byte) (Format, bool) {
	if len(data) == 0 {
		return "", false
	}
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || name == "" {
		return "", false
	}
	return Format(name), true
}

// containsFold reports whether token occurs in data, ignoring ASCII case.
// token must be lower case.
func containsFold(data, token []byte) bool {
	n := len(token)
	if n == 0 {
		return true
	}
	first := token[0]
	for i := 0; i+n <= len(data); i++ {
		c := data[i]
		if c != first && c|0x20 != first {
			continue
		}
		if bytes.EqualFold(data[i:i+n], token) {
			return true
		}
	}
	return false
}
