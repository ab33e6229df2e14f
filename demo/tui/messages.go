package tui

import "populator/types"

// Messages for the tea program

// ArticlesLoadedMsg carries the result of listing articles
type ArticlesLoadedMsg struct {
	Articles []types.Article
	Err      error
}

// ScrapeDoneMsg is sent when GET /scrape returns
type ScrapeDoneMsg struct {
	Message string
	Err     error
}

// ClearDoneMsg is sent when GET /clear returns
type ClearDoneMsg struct {
	Result *types.DeleteResult
	Err    error
}

// SavedToggledMsg is sent after the saved flag of an article changed
type SavedToggledMsg struct {
	Article *types.Article
	Err     error
}
