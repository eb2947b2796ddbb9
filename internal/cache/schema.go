package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency.
// expires_at, when set, overrides the config-driven TTL for that entry so
// not-found lookups can be cached with a shorter lifetime.

// JikanCacheSchema defines the schema for Jikan API anime responses
const JikanCacheSchema = `
CREATE TABLE IF NOT EXISTS jikan_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_jikan_cached_at ON jikan_cache(cached_at);
`

// MALPageCacheSchema defines the schema for scraped MyAnimeList page results
const MALPageCacheSchema = `
CREATE TABLE IF NOT EXISTS mal_page_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_mal_page_cached_at ON mal_page_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	JikanCacheSchema,
	MALPageCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	"jikan_cache":    true,
	"mal_page_cache": true,
}
