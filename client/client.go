// Package client talks to the populator HTTP routes.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"populator/types"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is where the server listens by default
const DefaultBaseURL = "http://localhost:3000"

// Client is a thin wrapper over the server routes
type Client struct {
	http *resty.Client
}

// NewClient creates a client for baseURL ("" means DefaultBaseURL)
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second)
	return &Client{http: rc}
}

// ServerError is an {"error": ...} body returned by the server, whatever the status
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Scrape triggers a scrape and returns the server's confirmation text
func (c *Client) Scrape(ctx context.Context) (string, error) {
	res, err := c.http.R().SetContext(ctx).Get("/scrape")
	if err != nil {
		return "", fmt.Errorf("scrape: %w", err)
	}
	if err := asServerError(res); err != nil {
		return "", err
	}
	return string(res.Body()), nil
}

// Articles lists every stored article
func (c *Client) Articles(ctx context.Context) ([]types.Article, error) {
	var out []types.Article
	if err := c.getJSON(ctx, "/articles", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Saved lists articles marked as saved
func (c *Client) Saved(ctx context.Context) ([]types.Article, error) {
	var out []types.Article
	if err := c.getJSON(ctx, "/saved", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Article fetches one article with its note. It returns nil when not found.
func (c *Client) Article(ctx context.Context, id string) (*ArticleWithNote, error) {
	var out *ArticleWithNote
	if err := c.getJSON(ctx, "/articles/"+id, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddNote attaches a new note to article id and returns the updated article
func (c *Client) AddNote(ctx context.Context, id string, fields map[string]any) (*types.Article, error) {
	var out *types.Article
	if err := c.postJSON(ctx, "/articles/"+id, fields, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSaved flags article id as saved or not
func (c *Client) SetSaved(ctx context.Context, id string, saved bool) (*types.Article, error) {
	var out *types.Article
	if err := c.postJSON(ctx, "/articles/"+id+"/saved", map[string]bool{"saved": saved}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear deletes every article
func (c *Client) Clear(ctx context.Context) (*types.DeleteResult, error) {
	var out types.DeleteResult
	if err := c.getJSON(ctx, "/clear", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArticleWithNote is the client-side view of a populated article
type ArticleWithNote struct {
	types.Article
	Note map[string]any `json:"note"`
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	res, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return decode(res, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	res, err := c.http.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return decode(res, out)
}

func decode(res *resty.Response, out any) error {
	if err := asServerError(res); err != nil {
		return err
	}
	if err := json.Unmarshal(res.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", res.Request.URL, err)
	}
	return nil
}

// asServerError detects error bodies. Store errors arrive as 200 with an
// {"error": ...} object, so the body is checked as well as the status.
func asServerError(res *resty.Response) error {
	body := res.Body()
	var e struct {
		Error *string `json:"error"`
	}
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &e) == nil && e.Error != nil {
		return &ServerError{StatusCode: res.StatusCode(), Message: *e.Error}
	}
	if !res.IsSuccess() {
		return &ServerError{StatusCode: res.StatusCode(), Message: string(body)}
	}
	return nil
}
