package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case ArticlesLoadedMsg:
		return m.handleArticlesLoaded(msg)
	case ScrapeDoneMsg:
		return m.handleScrapeDone(msg)
	case ClearDoneMsg:
		return m.handleClearDone(msg)
	case SavedToggledMsg:
		return m.handleSavedToggled(msg)
	}
	return m, nil
}

// busy reports whether a request is in flight
func (m Model) busy() bool {
	return m.State == StateLoading || m.State == StateScraping || m.State == StateClearing
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.Articles)-1 {
			m.Cursor++
		}
		return m, nil
	}

	if m.busy() {
		return m, nil
	}

	switch msg.String() {
	case "s":
		m.State = StateScraping
		m = m.AddLog("Scrape requested")
		return m, triggerScrape(m.Client)
	case "r":
		m.State = StateLoading
		return m, loadArticles(m.Client, m.SavedOnly)
	case "f":
		m.SavedOnly = !m.SavedOnly
		m.State = StateLoading
		return m, loadArticles(m.Client, m.SavedOnly)
	case "c":
		m.State = StateClearing
		m = m.AddLog("Clearing all articles")
		return m, triggerClear(m.Client)
	case " ":
		if a, ok := m.selected(); ok {
			return m, toggleSaved(m.Client, a.ID.Hex(), !a.Saved)
		}
	}
	return m, nil
}

func (m Model) handleArticlesLoaded(msg ArticlesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.State = StateIdle
	m.Err = nil
	m.Articles = msg.Articles
	if m.Cursor >= len(m.Articles) {
		m.Cursor = max(len(m.Articles)-1, 0)
	}
	return m, nil
}

func (m Model) handleScrapeDone(msg ScrapeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m = m.AddLog("%s", msg.Message)
	m.State = StateLoading
	return m, loadArticles(m.Client, m.SavedOnly)
}

func (m Model) handleClearDone(msg ClearDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m = m.AddLog("Deleted %d articles", msg.Result.DeletedCount)
	m.State = StateLoading
	m.Cursor = 0
	return m, loadArticles(m.Client, m.SavedOnly)
}

func (m Model) handleSavedToggled(msg SavedToggledMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	if msg.Article == nil {
		m = m.AddLog("Article no longer exists")
		return m, loadArticles(m.Client, m.SavedOnly)
	}
	for i := range m.Articles {
		if m.Articles[i].ID == msg.Article.ID {
			m.Articles[i] = *msg.Article
		}
	}
	if m.SavedOnly && !msg.Article.Saved {
		return m, loadArticles(m.Client, m.SavedOnly)
	}
	return m, nil
}
