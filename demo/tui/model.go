package tui

import (
	"fmt"
	"time"

	"populator/client"
	"populator/types"

	tea "github.com/charmbracelet/bubbletea"
)

// State represents what the dashboard is waiting on
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateScraping State = "scraping"
	StateClearing State = "clearing"
	StateError    State = "error"
)

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

const maxLogs = 6

// Model is the dashboard state
type Model struct {
	Client *client.Client

	State     State
	Articles  []types.Article
	SavedOnly bool
	Cursor    int
	Logs      []LogEntry
	Err       error
}

// NewModel creates a dashboard talking to baseURL
func NewModel(baseURL string) Model {
	return Model{
		Client: client.NewClient(baseURL),
		State:  StateLoading,
		Logs:   make([]LogEntry, 0, maxLogs),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return loadArticles(m.Client, m.SavedOnly)
}

// AddLog appends a timestamped line, keeping the newest maxLogs entries
func (m Model) AddLog(format string, args ...any) Model {
	m.Logs = append(m.Logs, LogEntry{Timestamp: time.Now(), Message: fmt.Sprintf(format, args...)})
	if len(m.Logs) > maxLogs {
		m.Logs = m.Logs[len(m.Logs)-maxLogs:]
	}
	return m
}

// selected returns the article under the cursor, if any
func (m Model) selected() (types.Article, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Articles) {
		return types.Article{}, false
	}
	return m.Articles[m.Cursor], true
}

func (m Model) countSaved() int {
	n := 0
	for _, a := range m.Articles {
		if a.Saved {
			n++
		}
	}
	return n
}

// getStateText returns the status line for the current state
func (m Model) getStateText() string {
	switch m.State {
	case StateIdle:
		return StatusStyle.Render("Ready")
	case StateLoading:
		return StatusStyle.Render("Loading articles...")
	case StateScraping:
		return StatusStyle.Render("Scraping...")
	case StateClearing:
		return StatusStyle.Render("Clearing articles...")
	case StateError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return ErrorStyle.Render("Error: " + errMsg)
	default:
		return ""
	}
}
