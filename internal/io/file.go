// Package ioutils provides file system utilities for the image downloader.
//
// This package contains functions for:
//   - Filename resolution against the sniffed format
//   - Exclusive, collision-safe file writes
//   - Directory creation
package ioutils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/image-downloader/internal/sniff"
)

// MaxNameAttempts bounds the collision loop in WriteExclusive.
const MaxNameAttempts = 50

// fallbackStem replaces the stem when a name cannot be written at all.
const fallbackStem = "unknown"

// ErrNameAttemptsExhausted is returned when WriteExclusive could not create a
// file within MaxNameAttempts attempts.
var ErrNameAttemptsExhausted = errors.New("ioutils: file name attempts exhausted")

// supportedFormats is the set of formats whose extension is enforced on
// written files.
var supportedFormats = map[sniff.Format]struct{}{
	sniff.JPG:  {},
	sniff.PNG:  {},
	sniff.BMP:  {},
	sniff.WEBP: {},
	sniff.GIF:  {},
	sniff.XML:  {},
	sniff.HTML: {},
}

// IsSupported reports whether files of the given format get their extension
// rewritten by ResolveFileName.
func IsSupported(f sniff.Format) bool {
	_, ok := supportedFormats[f]
	return ok
}

// ResolveFileName returns a filename whose extension matches format.
//
// The following steps are applied:
//   - Anything up to the last '/' or '\' is stripped
//   - A ".jpeg" suffix becomes ".jpg"
//   - For a supported format, an extension that already matches exactly is
//     kept; otherwise the extension is replaced with the canonical one
//
// For Unknown and recognized-but-unsupported formats the (stripped and
// normalized) name is returned with ok == false so the caller can warn.
// An empty name becomes "unknown".
//
// Example:
//
//	ResolveFileName("photo.JPEG", sniff.JPG)  // "photo.jpg", true
//	ResolveFileName("a/b/c.png", sniff.PNG)   // "c.png", true
//	ResolveFileName("cat.jpg", sniff.HTML)    // "cat.html", true
//	ResolveFileName("scan.jpg", sniff.TIFF)   // "scan.jpg", false
func ResolveFileName(candidate string, format sniff.Format) (name string, ok bool) {
	name = baseName(candidate)
	if strings.HasSuffix(name, ".jpeg") {
		name = strings.TrimSuffix(name, ".jpeg") + ".jpg"
	}
	if name == "" {
		name = fallbackStem
	}

	if !IsSupported(format) {
		return name, false
	}

	want := "." + string(format)
	if filepath.Ext(name) == want {
		return name, true
	}
	return stem(name) + want, true
}

// WriteExclusive writes data to a new file named name inside dir and returns
// the name that was actually used.
//
// Files are opened with O_EXCL, so an existing file is never touched. When
// the name is taken, "stem_N.ext" is tried next (N counting attempts). Any
// other failure switches to the generic "unknown.ext" stem and the loop
// continues. A file that was created but could not be fully written is
// removed again.
//
// Returns ErrNameAttemptsExhausted (wrapping the last error) after
// MaxNameAttempts failed attempts.
func WriteExclusive(dir, name string, data []byte) (string, error) {
	base := name
	var lastErr error

	for attempt := 0; attempt < MaxNameAttempts; {
		err := createExclusive(filepath.Join(dir, name), data)
		if err == nil {
			return name, nil
		}
		lastErr = err
		attempt++

		if errors.Is(err, fs.ErrExist) {
			name = fmt.Sprintf("%s_%d%s", stem(base), attempt, filepath.Ext(base))
			continue
		}

		base = fallbackStem + filepath.Ext(name)
		name = base
	}

	return "", fmt.Errorf("%w: %v", ErrNameAttemptsExhausted, lastErr)
}

func createExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(path)
		return werr
	}
	return nil
}

// baseName strips any directory prefix, treating both separators alike
// regardless of the host OS.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// stem returns name without its final extension. Dot files keep their name.
func stem(name string) string {
	s := strings.TrimSuffix(name, filepath.Ext(name))
	if s == "" {
		return name
	}
	return s
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
