package tui

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/image-downloader/internal/config"
	"github.com/handiism/image-downloader/internal/download"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestResolveInput_LiteralURLs(t *testing.T) {
	source, urls, err := ResolveInput(context.Background(),
		"https://a.example/1.png, https://b.example/2.jpg not-a-url",
		false, config.DefaultSettings(), zerolog.Nop())
	require.NoError(t, err)

	assert.Empty(t, source)
	assert.Equal(t, []string{"https://a.example/1.png", "https://b.example/2.jpg"}, urls)
}

func TestResolveInput_ListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("# list\nhttps://a.example/1.png\n"), 0644))

	source, urls, err := ResolveInput(context.Background(), path, false, config.DefaultSettings(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, path, source)
	assert.Equal(t, []string{"https://a.example/1.png"}, urls)
}

func TestResolveInput_NoURLs(t *testing.T) {
	_, _, err := ResolveInput(context.Background(), "hello world", false, config.DefaultSettings(), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoURLs)

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0644))
	_, _, err = ResolveInput(context.Background(), path, false, config.DefaultSettings(), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoURLs)
}

func TestResolveInput_ScrapePage(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`<html><body><img src="/a.png"></body></html>`))
	}))
	defer server.Close()

	source, urls, err := ResolveInput(context.Background(), server.URL+"/page", true, config.DefaultSettings(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/page", source)
	assert.Equal(t, []string{server.URL + "/a.png"}, urls)
}

func TestModel_ToggleOptions(t *testing.T) {
	m := NewModel(nil, zerolog.Nop())
	assert.False(t, m.scrapePage)
	assert.False(t, m.strict)
	assert.False(t, m.verbose)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})

	assert.True(t, m.scrapePage)
	assert.True(t, m.strict)
	assert.True(t, m.verbose)
	assert.Contains(t, m.View(), "Enter page URL to scrape")
	assert.Empty(t, m.textInput.Value())
}

func TestModel_InitError(t *testing.T) {
	m := NewModel(nil, zerolog.Nop())
	m.state = StateInitializing

	m = update(t, m, InitDoneMsg{Err: errors.New("boom")})

	assert.Equal(t, StateError, m.state)
	assert.Contains(t, m.View(), "boom")
}

func TestModel_ProgressLogs(t *testing.T) {
	m := NewModel(nil, zerolog.Nop())
	m.state = StateDownloading

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "hidden", Level: download.LevelVerbose}})
	assert.Empty(t, m.logs)

	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "Saved x.png", Level: download.LevelSuccess}})
	}
	assert.Len(t, m.logs, maxLogs)
}

func TestModel_VerboseFilter(t *testing.T) {
	events := []download.ProgressEvent{
		{Message: "Queued https://a.example/1.jpg -> 1.jpg", Level: download.LevelVerbose},
		{Message: "Renamed 1.jpg -> 1.png (content is png)", Level: download.LevelVerbose},
		{Message: "Saved 1.png", Level: download.LevelSuccess},
	}

	tests := []struct {
		name    string
		verbose bool
		want    []string
	}{
		{"verbose off", false, []string{"Saved 1.png"}},
		{"verbose on", true, []string{
			"Queued https://a.example/1.jpg -> 1.jpg",
			"Renamed 1.jpg -> 1.png (content is png)",
			"Saved 1.png",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(nil, zerolog.Nop())
			if tt.verbose {
				m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
			}
			m.state = StateDownloading

			for _, e := range events {
				m = update(t, m, ProgressMsg{Event: e})
			}

			var got []string
			for _, entry := range m.logs {
				got = append(got, entry.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModel_DownloadDone(t *testing.T) {
	m := NewModel(nil, zerolog.Nop())
	m.state = StateDownloading

	m = update(t, m, DownloadDoneMsg{Succeeded: 2, Completed: 3, Total: 3, Bytes: 2048})

	assert.Equal(t, StateComplete, m.state)
	assert.Equal(t, int32(2), m.succeededFiles)
	assert.Contains(t, m.View(), "Saved: 2 of 3")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, StateInput, m.state)
	assert.Zero(t, m.totalFiles)
}

func TestModel_EscCancels(t *testing.T) {
	m := NewModel(nil, zerolog.Nop())
	m.state = StateDownloading

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, StateError, m.state)
	assert.ErrorIs(t, m.err, errCancelled)
	assert.Error(t, m.ctx.Err())
}
