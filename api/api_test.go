package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"populator/api"
	"populator/extractor"
	"populator/scraper"
	"populator/storage"
	"populator/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const page = `<html><body>
<div class="package"><a href="/news/1">One</a></div>
<div class="package"><a href="/news/2">Two</a></div>
<div class="package"></div>
</body></html>`

func init() {
	gin.SetMode(gin.TestMode)
}

type staticFetcher struct {
	body string
	err  error
}

func (f staticFetcher) Fetch(context.Context, string) (string, error) { return f.body, f.err }

type brokenStore struct {
	*storage.MemoryStore
}

var errStore = errors.New("store unavailable")

func (brokenStore) InsertArticles(context.Context, []types.Article) ([]types.Article, error) {
	return nil, errStore
}

func (brokenStore) ListArticles(context.Context, storage.ArticleFilter) ([]types.Article, error) {
	return nil, errStore
}

func (brokenStore) ClearArticles(context.Context) (*types.DeleteResult, error) {
	return nil, errStore
}

type harness struct {
	router http.Handler
	store  *storage.MemoryStore
}

func newHarness(t *testing.T, fetcher scraper.PageFetcher, store storage.Store) *harness {
	t.Helper()

	mem := storage.NewMemoryStore()
	if store == nil {
		store = mem
	}
	ex, err := extractor.New(".package")
	require.NoError(t, err)

	svc := &scraper.Service{URL: "https://news.example.com/", Fetcher: fetcher, Extractor: ex, Store: store}
	return &harness{
		router: api.NewRouter(api.Deps{Scraper: svc, Store: store}),
		store:  mem,
	}
}

func (h *harness) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (h *harness) scrapeAndList(t *testing.T) []map[string]any {
	t.Helper()
	w := h.do(t, http.MethodGet, "/scrape", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodGet, "/articles", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	return decode[[]map[string]any](t, w)
}

func TestScrape_StoresArticles(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)

	w := h.do(t, http.MethodGet, "/scrape", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Scrape Complete", w.Body.String())

	w = h.do(t, http.MethodGet, "/articles", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	articles := decode[[]map[string]any](t, w)
	require.Len(t, articles, 3)

	assert.Equal(t, "One", articles[0]["title"])
	assert.Equal(t, "/news/1", articles[0]["link"])
	assert.Equal(t, false, articles[0]["saved"])
	assert.NotEmpty(t, articles[0]["_id"])
	assert.NotContains(t, articles[0], "note")

	assert.Equal(t, "", articles[2]["title"])
	assert.NotContains(t, articles[2], "link")
}

func TestScrape_TwiceProducesDuplicates(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	h.scrapeAndList(t)
	articles := h.scrapeAndList(t)

	require.Len(t, articles, 6)
	assert.Equal(t, articles[0]["title"], articles[3]["title"])
	assert.NotEqual(t, articles[0]["_id"], articles[3]["_id"])
}

func TestScrape_StoreFailureStillCompletes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, brokenStore{storage.NewMemoryStore()})

	w := h.do(t, http.MethodGet, "/scrape", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Scrape Complete", w.Body.String())
}

func TestScrape_FetchFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{err: errors.New("connection refused")}, nil)

	w := h.do(t, http.MethodGet, "/scrape", "", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode[map[string]string](t, w)
	assert.Contains(t, body["error"], "connection refused")
}

func TestArticles_EmptyIsArray(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	w := h.do(t, http.MethodGet, "/articles", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestArticles_StoreErrorEchoed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, brokenStore{storage.NewMemoryStore()})

	for _, path := range []string{"/articles", "/saved", "/clear"} {
		w := h.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{"error":"store unavailable"}`, w.Body.String(), path)
	}
}

func TestClear_ThenListIsEmpty(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	require.Len(t, h.scrapeAndList(t), 3)

	w := h.do(t, http.MethodGet, "/clear", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":3}`, w.Body.String())

	w = h.do(t, http.MethodGet, "/articles", "", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetArticle_Unknown(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	w := h.do(t, http.MethodGet, "/articles/"+bson.NewObjectID().Hex(), "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestGetArticle_MalformedID(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	w := h.do(t, http.MethodGet, "/articles/xyz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Contains(t, body["error"], "invalid id")
}

func TestAttachNote_JSON(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	articles := h.scrapeAndList(t)
	id := articles[0]["_id"].(string)

	w := h.do(t, http.MethodPost, "/articles/"+id, "application/json", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, id, updated["_id"])
	noteID, ok := updated["note"].(string)
	require.True(t, ok, "note reference should be an id string")
	assert.Equal(t, 1, h.store.NoteCount())

	w = h.do(t, http.MethodGet, "/articles/"+id, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	populated := decode[map[string]any](t, w)
	note, ok := populated["note"].(map[string]any)
	require.True(t, ok, "note should be populated")
	assert.Equal(t, noteID, note["_id"])
	assert.Equal(t, "hello", note["text"])
}

func TestAttachNote_Form(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	id := h.scrapeAndList(t)[1]["_id"].(string)

	form := url.Values{"title": {"Remember"}, "body": {"read later"}}
	w := h.do(t, http.MethodPost, "/articles/"+id, "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/articles/"+id, "", "")
	note := decode[map[string]any](t, w)["note"].(map[string]any)
	assert.Equal(t, "Remember", note["title"])
	assert.Equal(t, "read later", note["body"])
}

func TestAttachNote_ReplacesPrevious(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	id := h.scrapeAndList(t)[0]["_id"].(string)

	h.do(t, http.MethodPost, "/articles/"+id, "application/json", `{"text":"first"}`)
	h.do(t, http.MethodPost, "/articles/"+id, "application/json", `{"text":"second"}`)
	assert.Equal(t, 2, h.store.NoteCount())

	w := h.do(t, http.MethodGet, "/articles/"+id, "", "")
	note := decode[map[string]any](t, w)["note"].(map[string]any)
	assert.Equal(t, "second", note["text"])
}

func TestAttachNote_UnknownArticle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	w := h.do(t, http.MethodPost, "/articles/"+bson.NewObjectID().Hex(), "application/json", `{"text":"orphan"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
	assert.Equal(t, 1, h.store.NoteCount())
}

func TestGetArticle_WithoutNoteOmitsField(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	id := h.scrapeAndList(t)[0]["_id"].(string)

	w := h.do(t, http.MethodGet, "/articles/"+id, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	article := decode[map[string]any](t, w)
	assert.Equal(t, id, article["_id"])
	assert.NotContains(t, article, "note")
}

func TestAttachNote_EmptyChunkedJSONBody(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	id := h.scrapeAndList(t)[0]["_id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/articles/"+id, strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, id, updated["_id"])
	assert.IsType(t, "", updated["note"])
	assert.Equal(t, 1, h.store.NoteCount())
}

func TestAttachNote_BadJSON(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	w := h.do(t, http.MethodPost, "/articles/"+bson.NewObjectID().Hex(), "application/json", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, h.store.NoteCount())
}

func TestSaved_FilterAndToggle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	articles := h.scrapeAndList(t)

	w := h.do(t, http.MethodGet, "/saved", "", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	id := articles[1]["_id"].(string)
	w = h.do(t, http.MethodPost, "/articles/"+id+"/saved", "application/json", `{"saved":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["saved"])

	w = h.do(t, http.MethodGet, "/saved", "", "")
	saved := decode[[]map[string]any](t, w)
	require.Len(t, saved, 1)
	assert.Equal(t, id, saved[0]["_id"])

	w = h.do(t, http.MethodPost, "/articles/"+id+"/saved", "application/json", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticFetcher{body: page}, nil)
	w := h.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStaticFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>populator</h1>"), 0o600))

	ex, err := extractor.New(".package")
	require.NoError(t, err)
	store := storage.NewMemoryStore()
	router := api.NewRouter(api.Deps{
		Scraper:   &scraper.Service{Fetcher: staticFetcher{body: page}, Extractor: ex, Store: store},
		Store:     store,
		PublicDir: dir,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>populator</h1>")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/articles", nil))
	assert.JSONEq(t, `[]`, w.Body.String())
}
