// Package source loads extension records from a local file or an HTTP
// endpoint. Each fetch is a single attempt; failures are never retried.
package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/starford/extdeck/internal/apperr"
	"github.com/starford/extdeck/internal/models"
)

// DefaultLocation is used when no location is configured.
const DefaultLocation = "data.json"

// Fetcher supplies the ordered extension records.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Extension, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]models.Extension, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]models.Extension, error) { return f(ctx) }

// New picks a fetcher for location: http and https URLs use HTTP, anything
// else is a local file path.
func New(location string, timeout time.Duration) Fetcher {
	if location == "" {
		location = DefaultLocation
	}
	if IsRemote(location) {
		return NewHTTP(location, timeout)
	}
	return NewFile(location)
}

// IsRemote reports whether location is an HTTP(S) URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// loadError wraps every failure in the single load error class.
func loadError(location string, err error) error {
	return fmt.Errorf("%w: failed to load %s: %w", apperr.ErrLoad, location, err)
}
