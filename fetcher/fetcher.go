// Package fetcher downloads a single page over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Fetcher performs one GET per call. There is no retry.
type Fetcher struct {
	client *resty.Client
}

// New returns a Fetcher whose requests give up after timeout (0 disables it)
func New(timeout time.Duration) *Fetcher {
	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Fetcher{client: client}
}

// Fetch returns the full response body of url as text
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if !res.IsSuccess() {
		return "", &StatusError{URL: url, StatusCode: res.StatusCode()}
	}
	return string(res.Body()), nil
}
