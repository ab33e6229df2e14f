// Package extractor turns raw page markup into scraped title/link records.
package extractor

import (
	"fmt"
	"io"
	"strings"

	"populator/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Extractor selects elements with a fixed CSS selector and reads the first
// anchor below each one.
type Extractor struct {
	selector string
	matcher  cascadia.Selector
}

// New compiles selector. An invalid selector is an error here rather than a
// silent empty result at extraction time.
func New(selector string) (*Extractor, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	return &Extractor{selector: selector, matcher: m}, nil
}

// Selector returns the selector the extractor was built with
func (e *Extractor) Selector() string { return e.selector }

// Extract parses r and returns one item per matching element in document
// order. Title is the first anchor's text as-is ("" without an anchor); Link
// is its href, nil when there is no anchor or no href attribute.
func (e *Extractor) Extract(r io.Reader) ([]types.ScrapedItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	matches := doc.FindMatcher(e.matcher)
	items := make([]types.ScrapedItem, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a").First()

		item := types.ScrapedItem{Title: anchor.Text()}
		if href, ok := anchor.Attr("href"); ok {
			item.Link = &href
		}
		items = append(items, item)
	})
	return items, nil
}

// ExtractString is Extract over an in-memory document
func (e *Extractor) ExtractString(html string) ([]types.ScrapedItem, error) {
	return e.Extract(strings.NewReader(html))
}
