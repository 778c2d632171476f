// Package proxy forwards internal route shapes to the public F1 statistics
// API. Payloads pass through verbatim as opaque JSON; every upstream failure
// collapses into one gateway error with the cause logged server-side only.
package proxy

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"pitlane/internal/apperr"
	"pitlane/internal/cache"
)

const cacheKeyPrefix = "f1:"

// Client calls the upstream F1 API. Responses may be cached for a short TTL
// through the fail-safe cache wrapper; a nil cache disables caching.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Client
	ttl     time.Duration
}

// New builds an upstream client. The timeout bounds every forwarded call;
// a zero timeout selects 5 seconds.
func New(baseURL string, timeout time.Duration, c *cache.Client, ttl time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cache:   c,
		ttl:     ttl,
	}
}

// CleanPath normalizes a computed upstream path: leading slashes are trimmed,
// and search paths lose any leading "current/" segment because the upstream
// does not accept a season prefix on search.
func CleanPath(path string) string {
	clean := strings.TrimLeft(path, "/")
	if strings.Contains(strings.ToLower(clean), "search") {
		if len(clean) >= len("current/") && strings.EqualFold(clean[:len("current/")], "current/") {
			clean = clean[len("current/"):]
		}
	}
	return clean
}

// Fetch forwards a GET for the given upstream path (query string included)
// and returns the raw body. Any transport error, timeout or non-2xx status
// becomes apperr.Gateway.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		log.Printf("f1 upstream: %s returned status %d", CleanPath(path), status)
		return nil, apperr.Gateway()
	}
	return body, nil
}

// FetchOptional is Fetch for queries where upstream not-found is a valid
// empty result rather than a failure; it returns (nil, nil) on a 404. Used
// for the next-race query once the season has concluded.
func (c *Client) FetchOptional(ctx context.Context, path string) ([]byte, error) {
	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status > 299 {
		log.Printf("f1 upstream: %s returned status %d", CleanPath(path), status)
		return nil, apperr.Gateway()
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	clean := CleanPath(path)

	if cached := c.cache.Get(ctx, cacheKeyPrefix+clean); cached != nil {
		return cached, http.StatusOK, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+clean, nil)
	if err != nil {
		log.Printf("f1 upstream: build request for %s: %v", clean, err)
		return nil, 0, apperr.Gateway()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("f1 upstream: %s: %v", clean, err)
		return nil, 0, apperr.Gateway()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("f1 upstream: read %s: %v", clean, err)
		return nil, 0, apperr.Gateway()
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 && c.ttl > 0 {
		c.cache.Set(ctx, cacheKeyPrefix+clean, body, c.ttl)
	}
	return body, resp.StatusCode, nil
}
