package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ScrapeCompleteMessage is the plain-text body of a finished scrape
const ScrapeCompleteMessage = "Scrape Complete"

// RegisterScrapeRoutes registers the scrape trigger.
func RegisterScrapeRoutes(r *gin.Engine, s Scraper) {
	r.GET("/scrape", handleScrape(s))
}

// handleScrape runs a scrape synchronously. A failed fetch is a 502; a failed
// insert has already been logged by the scraper and still answers
// "Scrape Complete".
func handleScrape(s Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := s.Run(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.String(http.StatusOK, ScrapeCompleteMessage)
	}
}
