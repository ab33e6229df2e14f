package api

import (
	"context"
	"net/http"
	"os"

	"populator/logger"
	"populator/scraper"
	"populator/storage"

	"github.com/gin-gonic/gin"
)

// Scraper runs one scrape cycle
type Scraper interface {
	Run(ctx context.Context) (*scraper.Result, error)
}

// Deps are the collaborators the routes need. Store is shared by every request.
type Deps struct {
	Scraper   Scraper
	Store     storage.Store
	Log       logger.Logger
	PublicDir string
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), LoggerMiddleware(d.Log))

	RegisterHealthRoutes(r)
	RegisterScrapeRoutes(r, d.Scraper)
	RegisterArticleRoutes(r, d.Store)
	registerStatic(r, d.PublicDir, d.Log)
	return r
}

// registerStatic serves dir for any GET/HEAD that no route claimed. gin
// cannot mount a root catch-all next to the API routes, so this hangs off
// NoRoute instead.
func registerStatic(r *gin.Engine, dir string, log logger.Logger) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn("Public directory not found; static files disabled", logger.String("dir", dir))
		return
	}

	files := http.FileServer(gin.Dir(dir, false))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}
