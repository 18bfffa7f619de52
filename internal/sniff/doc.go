// Package sniff infers the real format of a downloaded payload from its bytes.
//
// File names and Content-Type headers served by image hosts are unreliable,
// so the downloader never trusts them. A Sniffer runs an ordered list of
// Detector functions over the payload and reports the first match:
//
//	s := sniff.NewSniffer(sniff.DefaultDetectors()...)
//	switch s.Sniff(body) {
//	case sniff.JPG:
//	    // JFIF, Exif, ICC, Adobe or bare DQT JPEG
//	case sniff.HTML:
//	    // an error page served with an image URL
//	case sniff.Unknown:
//	    // nothing matched
//	}
//
// # Detectors
//
// DefaultDetectors returns, in order:
//   - the classic container magic numbers (jpeg, png, gif, tiff, rgb,
//     pbm, pgm, ppm, rast, xbm, bmp, webp, exr)
//   - html and xml detectors for mislabeled text payloads
//   - permissive JPEG detectors (ICC_PROFILE, Adobe, DQT after SOI)
//   - a decoder-confirmed fallback that parses the image header with the
//     image package registry
//
// Detector order only matters when a custom list is supplied; first match wins.
//
// Sniff never panics: short or empty buffers are reported as Unknown, and
// "jpeg" is always normalized to "jpg".
package sniff
