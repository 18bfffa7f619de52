// Package ioutils provides the filesystem side of the image downloader.
//
// This package contains functions for:
//   - Resolving a candidate filename against the sniffed payload format
//   - Collision-safe writes using exclusive create
//   - Directory creation
//
// # Filename Resolution
//
// ResolveFileName fixes the extension of a candidate name so that it matches
// the real content:
//
//	name, ok := ioutils.ResolveFileName("a/b/photo.jpeg", sniff.PNG) // "photo.png", true
//	name, ok = ioutils.ResolveFileName("blob.bin", sniff.Unknown)     // "blob.bin", false
//
// # Collision-Safe Writes
//
// WriteExclusive never overwrites an existing file. When the name is taken,
// an incrementing suffix is appended to the stem:
//
//	name, err := ioutils.WriteExclusive(dir, "img.jpg", data)
//	// "img.jpg", then "img_1.jpg", "img_2.jpg", ...
//
// The loop is bounded by MaxNameAttempts and returns ErrNameAttemptsExhausted
// when every candidate was taken or failed.
package ioutils
