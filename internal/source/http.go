package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/starford/extdeck/internal/models"
)

// HTTP fetches records with a single GET request.
type HTTP struct {
	url    string
	client *resty.Client
}

// NewHTTP creates an HTTP fetcher. Retries are disabled.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "extdeck/1.0")
	return &HTTP{url: url, client: client}
}

// URL returns the endpoint.
func (h *HTTP) URL() string { return h.url }

// Fetch performs the GET and decodes the body.
func (h *HTTP) Fetch(ctx context.Context) ([]models.Extension, error) {
	resp, err := h.client.R().SetContext(ctx).Get(h.url)
	if err != nil {
		return nil, loadError(h.url, err)
	}
	if resp.IsError() {
		return nil, loadError(h.url, fmt.Errorf("status %d", resp.StatusCode()))
	}
	records, err := Decode(resp.Body())
	if err != nil {
		return nil, loadError(h.url, err)
	}
	return records, nil
}
