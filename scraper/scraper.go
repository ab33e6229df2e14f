// Package scraper runs one fetch, extract and persist cycle.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"populator/events"
	"populator/extractor"
	"populator/logger"
	"populator/storage"
	"populator/types"
)

// PageFetcher downloads a page as text
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageArchiver stores the raw page and returns where it went
type PageArchiver interface {
	ArchivePage(ctx context.Context, sourceURL, html string) (string, error)
}

// EventPublisher announces a completed scrape
type EventPublisher interface {
	Publish(ev events.ScrapeEvent) error
}

// Result summarizes one run
type Result struct {
	URL        string
	Extracted  int
	Inserted   int
	ArchiveKey string
	// StoreErr is the insert failure, if any. Run does not return it.
	StoreErr error
}

// Service wires fetcher, extractor and store together. Archiver and
// Publisher are optional.
type Service struct {
	URL       string
	Fetcher   PageFetcher
	Extractor *extractor.Extractor
	Store     storage.Store
	Archiver  PageArchiver
	Publisher EventPublisher
	Log       logger.Logger
	Now       func() time.Time
}

// Run fetches URL, extracts items and bulk-inserts them as Articles.
//
// Fetch and parse failures are returned. An insert failure is only logged and
// recorded in Result.StoreErr, so callers still treat the scrape as done.
// Nothing is deduplicated: running twice over the same page stores every
// item twice.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	log := s.logger().With(logger.String("url", s.URL))
	res := &Result{URL: s.URL}

	start := s.now()
	html, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, err
	}

	items, err := s.Extractor.Extract(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", s.URL, err)
	}
	res.Extracted = len(items)

	articles := make([]types.Article, len(items))
	for i, item := range items {
		articles[i] = types.NewArticle(item)
	}

	stored, err := s.Store.InsertArticles(ctx, articles)
	if err != nil {
		res.StoreErr = err
		log.Error("Failed to store scraped articles",
			logger.Int("extracted", res.Extracted),
			logger.Error(err),
		)
		return res, nil
	}
	res.Inserted = len(stored)

	if s.Archiver != nil {
		key, err := s.Archiver.ArchivePage(ctx, s.URL, html)
		if err != nil {
			log.Warn("Failed to archive page", logger.Error(err))
		}
		res.ArchiveKey = key
	}

	if s.Publisher != nil {
		ev := events.ScrapeEvent{
			URL:        s.URL,
			Selector:   s.Extractor.Selector(),
			Count:      res.Inserted,
			ArchiveKey: res.ArchiveKey,
			ScrapedAt:  start.UTC(),
		}
		if err := s.Publisher.Publish(ev); err != nil {
			log.Warn("Failed to publish scrape event", logger.Error(err))
		}
	}

	log.Info("Scrape complete",
		logger.Int("extracted", res.Extracted),
		logger.Int("inserted", res.Inserted),
		logger.Duration("elapsed", s.now().Sub(start)),
	)
	return res, nil
}

func (s *Service) logger() logger.Logger {
	if s.Log == nil {
		return logger.NewNop()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
