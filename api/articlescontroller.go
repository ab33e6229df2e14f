package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"populator/storage"

	"github.com/gin-gonic/gin"
)

type articlesController struct {
	store storage.Store
}

// RegisterArticleRoutes registers article and note routes.
//
// Store failures on these routes are echoed back as a 200 JSON body of the
// form {"error": "..."}; lookups that find nothing answer 200 null.
func RegisterArticleRoutes(r *gin.Engine, store storage.Store) {
	h := &articlesController{store: store}
	r.GET("/articles", h.list)
	r.GET("/articles/:id", h.get)
	r.POST("/articles/:id", h.attachNote)
	r.POST("/articles/:id/saved", h.setSaved)
	r.GET("/saved", h.listSaved)
	r.GET("/clear", h.clear)
}

// SetSavedRequest is the body of POST /articles/:id/saved
type SetSavedRequest struct {
	Saved *bool `json:"saved" binding:"required"`
}

func (h *articlesController) list(c *gin.Context) {
	articles, err := h.store.ListArticles(c.Request.Context(), storage.ArticleFilter{})
	if err != nil {
		echoError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *articlesController) listSaved(c *gin.Context) {
	articles, err := h.store.ListArticles(c.Request.Context(), storage.ArticleFilter{SavedOnly: true})
	if err != nil {
		echoError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *articlesController) get(c *gin.Context) {
	article, err := h.store.FindArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		echoError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, article)
}

// attachNote creates a Note from the request body and points the article at
// it. The Note is created even when the article does not exist.
func (h *articlesController) attachNote(c *gin.Context) {
	fields, err := noteFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	note, err := h.store.CreateNote(ctx, fields)
	if err != nil {
		echoError(c, err)
		return
	}

	article, err := h.store.AttachNote(ctx, c.Param("id"), note.ID)
	if err != nil {
		echoError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *articlesController) setSaved(c *gin.Context) {
	var req SetSavedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article, err := h.store.SetSaved(c.Request.Context(), c.Param("id"), *req.Saved)
	if err != nil {
		echoError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *articlesController) clear(c *gin.Context) {
	res, err := h.store.ClearArticles(c.Request.Context())
	if err != nil {
		echoError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// noteFields reads the note body from JSON or form-encoded input. An empty
// body, announced or chunked, is an empty note.
func noteFields(c *gin.Context) (map[string]any, error) {
	fields := map[string]any{}
	if c.Request.ContentLength == 0 {
		return fields, nil
	}

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		if err := c.ShouldBindJSON(&fields); err != nil {
			if errors.Is(err, io.EOF) {
				return map[string]any{}, nil
			}
			return nil, err
		}
		return fields, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for key, values := range c.Request.PostForm {
		if len(values) == 1 {
			fields[key] = values[0]
			continue
		}
		fields[key] = values
	}
	return fields, nil
}

// echoError answers 200 with the error as the body and records it for the
// request log.
func echoError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusOK, gin.H{"error": err.Error()})
}
