// Package tui provides a Bubble Tea terminal user interface for image-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/handiism/image-downloader/internal/config"
	"github.com/handiism/image-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

// errCancelled is shown when the user aborts a batch.
var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    zerolog.Logger
	logs      []LogEntry
	source    string
	urls      []string
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager
	events  chan download.ProgressEvent

	// Download progress
	totalFiles     int32
	completedFiles int32
	succeededFiles int32
	receivedBytes  int64

	// Options
	scrapePage bool
	strict     bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model.
//
// A nil settings uses config.DefaultSettings(). The logger should not write
// to the terminal, it would corrupt the screen.
func NewModel(settings *config.Settings, logger zerolog.Logger) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "https://example.com/gallery or urls.txt"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logger:    logger,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		strict:    settings.RejectUnknown,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when download progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when the URL list has been resolved.
	InitDoneMsg struct {
		Source  string
		URLs    []string
		Manager *download.Manager
		Events  chan download.ProgressEvent
		Err     error
	}

	// DownloadDoneMsg is sent when the batch finishes.
	DownloadDoneMsg struct {
		Succeeded int
		Completed int32
		Total     int32
		Bytes     int64
		Err       error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "tab":
			if m.state == StateInput {
				m.scrapePage = !m.scrapePage
				return m, nil
			}

		case "ctrl+s":
			if m.state == StateInput {
				m.strict = !m.strict
				return m, nil
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m = m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if m.events != nil {
			cmds = append(cmds, waitForEvent(m.events))
		}
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if m.state != StateInitializing {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.source = msg.Source
		m.urls = msg.URLs
		m.manager = msg.Manager
		m.events = msg.Events
		m.totalFiles = int32(len(msg.URLs))
		m.state = StateDownloading
		cmds = append(cmds, m.startDownload(), m.tickProgress(), waitForEvent(m.events))

	case DownloadDoneMsg:
		// A batch cancelled before "r" may still report in.
		if m.state == StateInput || m.state == StateInitializing {
			return m, nil
		}
		m.succeededFiles = int32(msg.Succeeded)
		m.completedFiles = msg.Completed
		m.totalFiles = msg.Total
		m.receivedBytes = msg.Bytes
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			m.completedFiles, m.succeededFiles, m.totalFiles, m.receivedBytes = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.source = ""
	m.urls = nil
	m.err = nil
	m.completedFiles = 0
	m.succeededFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.manager = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

func (m Model) percent() float64 {
	if m.totalFiles == 0 {
		return 0
	}
	return float64(m.completedFiles) / float64(m.totalFiles)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next manager event as a ProgressMsg.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Image Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download images from URL lists and web pages"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	if m.scrapePage {
		b.WriteString(subtitleStyle.Render("Enter page URL to scrape:"))
	} else {
		b.WriteString(subtitleStyle.Render("Enter image URLs or a URL list file:"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Scrape images from page (tab)\n", checkbox(m.scrapePage)))
	b.WriteString(fmt.Sprintf("  %s Skip unrecognized formats (ctrl+s)\n", checkbox(m.strict)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Collecting image URLs..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d image URL(s)", len(m.urls))))
	if m.source != "" {
		b.WriteString(sourceStyle.Render(" from " + m.source))
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Done: %d/%d | Saved: %d | Downloaded: %.2f MB",
		m.completedFiles,
		m.totalFiles,
		m.succeededFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"Download Complete!\n\n"+
			"Saved: %d of %d\n"+
			"Size: %.2f MB\n"+
			"Folder: %s",
		m.succeededFiles,
		m.totalFiles,
		float64(m.receivedBytes)/1024/1024,
		m.settings.OutputDir,
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: page mode • ctrl+s: strict • ctrl+o: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload resolves the input into URLs and creates the manager.
func (m Model) initializeDownload() tea.Cmd {
	ctx := m.ctx
	input := strings.TrimSpace(m.textInput.Value())
	scrapePage := m.scrapePage
	logger := m.logger

	settings := *m.settings
	settings.RejectUnknown = m.strict

	return func() tea.Msg {
		events := make(chan download.ProgressEvent, 256)
		manager, err := download.NewManager(&settings, logger, func(event download.ProgressEvent) {
			// Drop events rather than stall workers when the UI falls behind.
			select {
			case events <- event:
			default:
			}
		})
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		source, urls, err := ResolveInput(ctx, input, scrapePage, &settings, logger)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Source:  source,
			URLs:    urls,
			Manager: manager,
			Events:  events,
		}
	}
}

// startDownload starts the actual download in background.
func (m Model) startDownload() tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	urls := m.urls
	events := m.events

	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: errors.New("no manager")}
		}

		n, err := manager.DownloadAll(ctx, urls)
		completed, _, total, bytes := manager.GetProgress()
		close(events)

		return DownloadDoneMsg{
			Succeeded: n,
			Completed: completed,
			Total:     total,
			Bytes:     bytes,
			Err:       err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger zerolog.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
