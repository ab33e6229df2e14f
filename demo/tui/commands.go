package tui

import (
	"context"
	"time"

	"populator/client"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 90 * time.Second

// loadArticles lists all articles, or only saved ones
func loadArticles(c *client.Client, savedOnly bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if savedOnly {
			articles, err := c.Saved(ctx)
			return ArticlesLoadedMsg{Articles: articles, Err: err}
		}
		articles, err := c.Articles(ctx)
		return ArticlesLoadedMsg{Articles: articles, Err: err}
	}
}

func triggerScrape(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg, err := c.Scrape(ctx)
		return ScrapeDoneMsg{Message: msg, Err: err}
	}
}

func triggerClear(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		res, err := c.Clear(ctx)
		return ClearDoneMsg{Result: res, Err: err}
	}
}

func toggleSaved(c *client.Client, id string, saved bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		a, err := c.SetSaved(ctx, id, saved)
		return SavedToggledMsg{Article: a, Err: err}
	}
}
