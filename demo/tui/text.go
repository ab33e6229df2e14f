package tui

// UI Text Constants
const (
	TextFooter      = "s scrape | r refresh | f saved filter | space toggle saved | c clear | ↑/↓ move | q quit"
	TextEmptyList   = "No articles stored. Press 's' to scrape."
	TextEmptySaved  = "No saved articles."
	maxVisibleItems = 15
	maxTitleWidth   = 70
)
