package enrich

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/lepinkainen/maldb/internal/cache"
	"github.com/lepinkainen/maldb/internal/ratelimit"
	"github.com/lepinkainen/maldb/internal/testutil"
	"github.com/stretchr/testify/require"
)

// setupTestServer points the package's HTTP stack at a local test
// server. The API and page base URLs get distinct path prefixes so one
// mux can serve both, and the rate limiter is replaced with a permissive
// one to keep tests fast.
func setupTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	origFactory := httpClientNew
	t.Cleanup(func() {
		httpClient = nil
		clientOnce = sync.Once{}
		httpClientNew = origFactory
		malRateLimiter = nil
		rateLimiterOnce = sync.Once{}
		jikanBaseURL = "https://api.jikan.moe/v4"
		malPageBaseURL = "https://myanimelist.net"
	})

	clientOnce = sync.Once{}
	httpClient = nil
	httpClientNew = func() *http.Client { return server.Client() }

	rateLimiterOnce = sync.Once{}
	malRateLimiter = ratelimit.New("MyAnimeList", 1000)
	rateLimiterOnce.Do(func() {})

	jikanBaseURL = server.URL + "/v4"
	malPageBaseURL = server.URL + "/mal"

	return server
}

// setupTestCacheDB gives the test its own cache database under env so
// lookups in one test never see another's entries.
func setupTestCacheDB(t *testing.T, env *testutil.TestEnv) {
	t.Helper()

	testutil.SetupTestCache(t, env)
	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() { _ = cache.ResetGlobalCache() })
}

// countingHandler wraps a handler and counts requests per path.
type countingHandler struct {
	mu      sync.Mutex
	counts  map[string]int
	handler http.Handler
}

func newCountingHandler(handler http.Handler) *countingHandler {
	return &countingHandler{
		counts:  make(map[string]int),
		handler: handler,
	}
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.counts[r.URL.Path]++
	c.mu.Unlock()
	c.handler.ServeHTTP(w, r)
}

func (c *countingHandler) Count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[path]
}

func (c *countingHandler) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// jikanAnimeJSON builds a minimal Jikan anime payload carrying the given
// jpg image URL.
func jikanAnimeJSON(imageURL string) string {
	return `{"data":{"mal_id":1,"title":"Test","images":{"jpg":{"image_url":"` + imageURL + `"}}}}`
}
