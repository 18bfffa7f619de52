package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateFileName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/a/photo.jpeg?w=640", "photo.jpeg"},
		{"https://example.com/x/cat%20face.png&amp;s=1", "cat face.png"},
		{"https://example.com/a.png?x=1&amp;y=2", "a.png"},
		{"https://example.com/p&amp;q/a.png", "p"},
		{"https://example.com/gallery/", "gallery"},
		{"https://example.com/img/a.png?next=/b/c.png", "a.png"},
		{"https://example.com/bad%zz.png", "bad%zz.png"},
		{"?x=1", "?x=1"},
		{"photo.jpg", "photo.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateFileName(tt.url))
		})
	}
}

func TestTruncateEncodedAmpersand(t *testing.T) {
	assert.Equal(t, "https://example.com/a.png?x=1",
		TruncateEncodedAmpersand("https://example.com/a.png?x=1&amp;y=2"))
	assert.Equal(t, "https://example.com/a.png?x=1&y=2",
		TruncateEncodedAmpersand("https://example.com/a.png?x=1&y=2"))
}
