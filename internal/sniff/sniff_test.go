package sniff

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func TestSniff_ShortBuffers(t *testing.T) {
	s := Default()

	inputs := [][]byte{
		nil,
		{},
		{0xff},
		{'B'},
		{0x89},
		[]byte("\x89PN"),
		{0xff, 0xd8, 0xff},
		[]byte("GIF8"),
		[]byte("RIFF"),
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			assert.Equal(t, Unknown, s.Sniff(in), "input %q", in)
		})
	}
}

func TestSniff_MagicNumbers(t *testing.T) {
	s := Default()

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, testImage(), nil))

	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, testImage()))

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"png signature", []byte("\x89PNG\r\n\x1a\n"), PNG},
		{"encoded png", encodePNG(t), PNG},
		{"encoded gif", gifBuf.Bytes(), GIF},
		{"encoded bmp", bmpBuf.Bytes(), BMP},
		{"gif87a", []byte("GIF87a\x01\x00"), GIF},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), WEBP},
		{"tiff little endian", []byte("II\x2a\x00\x08\x00\x00\x00"), TIFF},
		{"tiff big endian", []byte("MM\x00\x2a\x00\x00\x00\x08"), TIFF},
		{"jfif", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), JPG},
		{"exif", []byte("\xff\xd8\xff\xe1\x00\x10Exif\x00"), JPG},
		{"pbm", []byte("P1 4 4\n"), PBM},
		{"pgm", []byte("P5\n4 4\n"), PGM},
		{"ppm", []byte("P6\t4 4\n"), PPM},
		{"rast", []byte{0x59, 0xa6, 0x6a, 0x95, 0x00}, RAST},
		{"xbm", []byte("#define img_width 4\n"), XBM},
		{"rgb", []byte{0x01, 0xda, 0x00, 0x01}, RGB},
		{"exr", []byte{0x76, 0x2f, 0x31, 0x01, 0x02}, EXR},
		{"random bytes", []byte("not an image at all"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sniff(tt.data))
		})
	}
}

func TestSniff_PermissiveJPEG(t *testing.T) {
	s := Default()

	tests := []struct {
		name string
		data []byte
	}{
		{"icc profile", []byte("\xff\xd8\xff\xe2\x0c\x58ICC_PROFILE\x00\x01")},
		{"adobe", []byte("\xff\xd8\xff\xee\x00\x0eAdobe\x00\x64")},
		{"dqt", []byte("\xff\xd8\xff\xdb\x00\x43\x00")},
		{"go encoder output", encodeJPEG(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, JPG, s.Sniff(tt.data))
		})
	}

	// APP2 without the ICC_PROFILE tag is not enough on its own.
	f, ok := DetectPermissiveJPEG([]byte("\xff\xd8\xff\xe2\x00\x10NOTICC"))
	assert.False(t, ok)
	assert.Empty(t, f)
}

func TestSniff_DecodableFallback(t *testing.T) {
	encoded := encodeJPEG(t)

	// Insert an APP13 segment right after SOI so that none of the magic
	// detectors match.
	data := append([]byte{0xff, 0xd8, 0xff, 0xed, 0x00, 0x04, 0x00, 0x00}, encoded[2:]...)

	withoutFallback := NewSniffer(DetectJPEG, DetectPermissiveJPEG)
	assert.Equal(t, Unknown, withoutFallback.Sniff(data))

	assert.Equal(t, JPG, Default().Sniff(data))
}

func TestSniff_HTML(t *testing.T) {
	s := Default()

	inputs := []string{
		"<html><body>404</body></html>",
		"<HTML><BODY>Forbidden</BODY></HTML>",
		"<!DOCTYPE html><title>x</title>",
		"<!doctype HTML>",
		"<!DocType html>",
		"\n\n   some preamble <html lang=\"en\">",
	}

	for _, in := range inputs {
		assert.Equal(t, HTML, s.Sniff([]byte(in)), "input %q", in)
	}
}

func TestSniff_XML(t *testing.T) {
	s := Default()

	assert.Equal(t, XML, s.Sniff([]byte(`<?xml version="1.0"?><Error><Code>AccessDenied</Code></Error>`)))
	assert.Equal(t, XML, s.Sniff([]byte(`<xml><a/></xml>`)))
	assert.Equal(t, Unknown, s.Sniff([]byte(`<?xml-stylesheet?>`)))
}

func TestSniff_ImageBeatsEmbeddedMarkup(t *testing.T) {
	data := append([]byte("\x89PNG\r\n\x1a\n"), []byte("<html>")...)
	assert.Equal(t, PNG, Default().Sniff(data))
}

func TestSniffer_FirstMatchWins(t *testing.T) {
	always := func(f Format) Detector {
		return func([]byte) (Format, bool) { return f, true }
	}

	s := NewSniffer(always(GIF), always(PNG))
	assert.Equal(t, GIF, s.Sniff([]byte("anything")))

	s = NewSniffer(always(PNG), always(GIF))
	assert.Equal(t, PNG, s.Sniff([]byte("anything")))
}

func TestSniffer_DetectorListIsCopied(t *testing.T) {
	ds := []Detector{DetectPNG}
	s := NewSniffer(ds...)
	ds[0] = DetectGIF

	assert.Equal(t, PNG, s.Sniff([]byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, Unknown, s.Sniff([]byte("GIF89a")))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, JPG, Normalize("jpeg"))
	assert.Equal(t, JPG, Normalize("JPEG"))
	assert.Equal(t, PNG, Normalize(PNG))
	assert.Equal(t, Unknown, Normalize(""))

	jpegOnly := NewSniffer(func([]byte) (Format, bool) { return "jpeg", true })
	assert.Equal(t, JPG, jpegOnly.Sniff([]byte{0}))
}
