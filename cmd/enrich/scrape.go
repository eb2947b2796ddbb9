package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/maldb/internal/cache"
	"github.com/lepinkainen/maldb/internal/config"
	"github.com/lepinkainen/maldb/internal/errors"
)

var malPageBaseURL = "https://myanimelist.net"

// ScrapeImageURL fetches the anime's MyAnimeList page and extracts a
// cover URL from its markup. Used as a fallback for ids the API lookup
// cannot resolve. Extraction results, including misses, go through the
// mal_page_cache table.
func ScrapeImageURL(ctx context.Context, malID string) (string, error) {
	lookup, _, err := cache.GetOrFetchWithTTL("mal_page_cache", malID,
		func() (CachedLookup, error) {
			url, fetchErr := scrapePageFunc(ctx, malID)
			if fetchErr != nil {
				if errors.IsNotFoundError(fetchErr) {
					return CachedLookup{NotFound: true}, nil
				}
				return CachedLookup{}, fetchErr
			}
			if url == "" {
				return CachedLookup{NotFound: true}, nil
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

// scrapePage fetches the anime page and returns the best-guess cover URL,
// empty when the page has none
func scrapePage(ctx context.Context, malID string) (string, error) {
	client := getHTTPClient()
	limiter := getMALRateLimiter()

	// Page scrapes share the API's rate limiter, both hit MyAnimeList
	if err := limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	url := fmt.Sprintf("%s/anime/%s", malPageBaseURL, malID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Referer", config.Referer)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("page request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", errors.NewNotFoundError("anime page", malID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", errors.NewRateLimitErrorWithRetry("MyAnimeList rate limit exceeded", parseRetryAfter(resp))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("page request returned status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	imageURL := extractImageURL(doc)
	if imageURL == "" {
		slog.Debug("No cover image found on page", "mal_id", malID)
	}
	return imageURL, nil
}

var scrapePageFunc = scrapePage

// extractImageURL returns the best guess for the cover image URL in a
// parsed page, or empty when none of the known locations match
func extractImageURL(doc *goquery.Document) string {
	// Prefer the Open Graph image
	if content, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	// The cover img is lazy-loaded, so data-src usually holds the real URL
	img := doc.Find("img[itemprop='image']").First()
	if src, ok := img.Attr("data-src"); ok {
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			return trimmed
		}
	}
	if src, ok := img.Attr("src"); ok {
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			return trimmed
		}
	}

	// Last resort: first image inside the known layout containers
	for _, selector := range []string{"#content img", ".leftside img", ".pic img"} {
		if src, ok := doc.Find(selector).First().Attr("src"); ok {
			if trimmed := strings.TrimSpace(src); trimmed != "" {
				return trimmed
			}
		}
	}

	return ""
}
