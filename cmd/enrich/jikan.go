package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/lepinkainen/maldb/internal/cache"
	"github.com/lepinkainen/maldb/internal/config"
	"github.com/lepinkainen/maldb/internal/errors"
	"github.com/lepinkainen/maldb/internal/ratelimit"
)

// jikanRequestInterval paces all MyAnimeList-bound traffic, API and page
// scrapes alike. Jikan throttles aggressively below roughly one request
// per second.
const jikanRequestInterval = 1300 * time.Millisecond

// defaultRetryWait is used when a 429 response carries no Retry-After header
const defaultRetryWait = 2 * time.Second

// Global HTTP client and rate limiter for reuse
var (
	httpClient      *http.Client
	clientOnce      sync.Once
	malRateLimiter  *ratelimit.Limiter
	rateLimiterOnce sync.Once
	httpClientNew   = func() *http.Client {
		return &http.Client{
			Timeout: 10 * time.Second,
		}
	}
)

var jikanBaseURL = "https://api.jikan.moe/v4"

// getHTTPClient returns a singleton HTTP client
func getHTTPClient() *http.Client {
	clientOnce.Do(func() {
		httpClient = httpClientNew()
	})
	return httpClient
}

// getMALRateLimiter returns a singleton rate limiter shared by every
// request that ends up at MyAnimeList
func getMALRateLimiter() *ratelimit.Limiter {
	rateLimiterOnce.Do(func() {
		malRateLimiter = ratelimit.NewEvery("MyAnimeList", jikanRequestInterval)
	})
	return malRateLimiter
}

// CachedLookup is the per-id record stored in the response caches: the
// resolved image URL, or a not-found marker so misses are not re-fetched
// on every run.
type CachedLookup struct {
	ImageURL string `json:"image_url"`
	NotFound bool   `json:"not_found,omitempty"`
}

// jikanAnimeResponse is the subset of the Jikan anime payload the
// enricher reads
type jikanAnimeResponse struct {
	Data jikanAnimeData `json:"data"`
}

type jikanAnimeData struct {
	MalID  int         `json:"mal_id"`
	Title  string      `json:"title"`
	Images jikanImages `json:"images"`
}

type jikanImages struct {
	JPG jikanImageURL `json:"jpg"`
}

type jikanImageURL struct {
	ImageURL string `json:"image_url"`
}

// LookupImageURL returns the cover image URL for a MAL id, consulting the
// response cache first. A 404 is negative-cached and yields an empty URL;
// transport and server errors are returned so the caller can decide
// whether to retry.
func LookupImageURL(ctx context.Context, malID string) (string, error) {
	lookup, _, err := cache.GetOrFetchWithTTL("jikan_cache", malID,
		func() (CachedLookup, error) {
			url, fetchErr := fetchImageURLFunc(ctx, malID)
			if fetchErr != nil {
				if errors.IsNotFoundError(fetchErr) {
					return CachedLookup{NotFound: true}, nil
				}
				return CachedLookup{}, fetchErr
			}
			return CachedLookup{ImageURL: url}, nil
		},
		cache.SelectNegativeCacheTTL(func(l CachedLookup) bool {
			return l.NotFound
		}))
	if err != nil {
		return "", err
	}
	if lookup.NotFound {
		return "", nil
	}
	return lookup.ImageURL, nil
}

// LookupImageURLWithRetry looks up an id, waiting out a single rate limit
// response before giving up on it
func LookupImageURLWithRetry(ctx context.Context, malID string) (string, error) {
	imageURL, err := LookupImageURL(ctx, malID)
	if err == nil || !errors.IsRateLimitError(err) {
		return imageURL, err
	}

	wait := errors.RetryAfterHint(err)
	if wait <= 0 {
		wait = defaultRetryWait
	}
	slog.Warn("Rate limited by Jikan API, backing off", "mal_id", malID, "wait", wait)

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return LookupImageURL(ctx, malID)
}

// fetchImageURL retrieves the cover image URL from the Jikan API
func fetchImageURL(ctx context.Context, malID string) (string, error) {
	client := getHTTPClient()
	limiter := getMALRateLimiter()

	// Wait for rate limiter
	if err := limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	url := fmt.Sprintf("%s/anime/%s", jikanBaseURL, malID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Referer", config.Referer)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Jikan API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", errors.NewNotFoundError("anime", malID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", errors.NewRateLimitErrorWithRetry("Jikan API rate limit exceeded", parseRetryAfter(resp))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("Jikan API returned status: %s", resp.Status)
	}

	var result jikanAnimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Jikan response: %w", err)
	}

	return result.Data.Images.JPG.ImageURL, nil
}

var fetchImageURLFunc = fetchImageURL

// parseRetryAfter reads a Retry-After header given in seconds, zero when
// absent or unparseable
func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
