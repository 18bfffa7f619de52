package ioutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/image-downloader/internal/sniff"
)

func TestResolveFileName(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		format    sniff.Format
		want      string
		wantOK    bool
	}{
		{"matching extension kept", "cat.png", sniff.PNG, "cat.png", true},
		{"path prefix stripped", "a/b/c.png", sniff.PNG, "c.png", true},
		{"backslash prefix stripped", `a\b\c.png`, sniff.PNG, "c.png", true},
		{"jpeg suffix normalized", "photo.jpeg", sniff.JPG, "photo.jpg", true},
		{"uppercase JPEG replaced", "photo.JPEG", sniff.JPG, "photo.jpg", true},
		{"uppercase PNG replaced", "photo.PNG", sniff.PNG, "photo.png", true},
		{"wrong extension replaced", "cat.jpg", sniff.PNG, "cat.png", true},
		{"error page detected", "cat.jpg", sniff.HTML, "cat.html", true},
		{"missing extension added", "download", sniff.GIF, "download.gif", true},
		{"only last extension replaced", "archive.tar.jpg", sniff.WEBP, "archive.tar.webp", true},
		{"unknown keeps name", "blob.bin", sniff.Unknown, "blob.bin", false},
		{"unknown still strips prefix", "x/y/blob.bin", sniff.Unknown, "blob.bin", false},
		{"unknown still normalizes jpeg", "blob.jpeg", sniff.Unknown, "blob.jpg", false},
		{"unsupported format keeps name", "scan.jpg", sniff.TIFF, "scan.jpg", false},
		{"empty name", "", sniff.PNG, "unknown.png", true},
		{"trailing separator", "dir/", sniff.Unknown, "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveFileName(tt.candidate, tt.format)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIsSupported(t *testing.T) {
	for _, f := range []sniff.Format{sniff.JPG, sniff.PNG, sniff.BMP, sniff.WEBP, sniff.GIF, sniff.XML, sniff.HTML} {
		assert.True(t, IsSupported(f), f)
	}
	for _, f := range []sniff.Format{sniff.TIFF, sniff.EXR, sniff.Unknown, "jpeg"} {
		assert.False(t, IsSupported(f), f)
	}
}

func TestWriteExclusive_NewFile(t *testing.T) {
	dir := t.TempDir()

	name, err := WriteExclusive(dir, "img.jpg", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "img.jpg", name)

	got, err := os.ReadFile(filepath.Join(dir, "img.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}

func TestWriteExclusive_Collision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.jpg"), []byte("original"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img_1.jpg"), []byte("first copy"), 0644))

	name, err := WriteExclusive(dir, "img.jpg", []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, "img_2.jpg", name)

	original, err := os.ReadFile(filepath.Join(dir, "img.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(original))

	firstCopy, err := os.ReadFile(filepath.Join(dir, "img_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "first copy", string(firstCopy))
}

func TestWriteExclusive_ConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.jpg"), []byte("original"), 0644))

	const writers = 8
	var wg sync.WaitGroup
	names := make([]string, writers)
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i], errs[i] = WriteExclusive(dir, "img.jpg", []byte(fmt.Sprintf("writer %d", i)))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	for i, name := range names {
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true

		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("writer %d", i), string(got))
	}
	assert.NotContains(t, seen, "img.jpg")

	original, err := os.ReadFile(filepath.Join(dir, "img.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(original))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, writers+1)
}

func TestWriteExclusive_TwoWritersSameName(t *testing.T) {
	dir := t.TempDir()

	first, err := WriteExclusive(dir, "img.jpg", []byte("a"))
	require.NoError(t, err)
	second, err := WriteExclusive(dir, "img.jpg", []byte("b"))
	require.NoError(t, err)

	got := []string{first, second}
	sort.Strings(got)
	assert.Equal(t, []string{"img.jpg", "img_1.jpg"}, got)
}

func TestWriteExclusive_FallbackStem(t *testing.T) {
	dir := t.TempDir()

	// A NUL byte makes the create fail with something other than "exists".
	name, err := WriteExclusive(dir, "bad\x00name.png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "unknown.png", name)

	name, err = WriteExclusive(dir, "bad\x00name.png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "unknown_2.png", name)
}

func TestWriteExclusive_Exhausted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.jpg"), nil, 0644))
	for i := 1; i < MaxNameAttempts; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("img_%d.jpg", i)), nil, 0644))
	}

	name, err := WriteExclusive(dir, "img.jpg", []byte("data"))
	assert.ErrorIs(t, err, ErrNameAttemptsExhausted)
	assert.Empty(t, name)

	_, statErr := os.Stat(filepath.Join(dir, fmt.Sprintf("img_%d.jpg", MaxNameAttempts)))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
