// Package events publishes and consumes scrape notifications over Kafka.
package events

import "time"

// ScrapeEvent is published after a scrape has been persisted
type ScrapeEvent struct {
	URL        string    `json:"url"`
	Selector   string    `json:"selector"`
	Count      int       `json:"count"`
	ArchiveKey string    `json:"archive_key,omitempty"`
	ScrapedAt  time.Time `json:"scraped_at"`
}
