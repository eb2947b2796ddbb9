package cache

import (
	"strings"
	"testing"

	"github.com/lepinkainen/maldb/internal/testutil"
	"github.com/spf13/viper"
)

// setupGlobalCacheDB points the global cache singleton at a fresh
// database with the real cache tables, the state InvalidateCacheCmd
// operates on.
func setupGlobalCacheDB(t *testing.T) *CacheDB {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	env := testutil.NewTestEnv(t)
	viper.Set("cache.dbfile", env.Path("apicache.db"))

	if err := ResetGlobalCache(); err != nil {
		t.Fatalf("Failed to reset global cache: %v", err)
	}
	t.Cleanup(func() { _ = ResetGlobalCache() })

	cacheDB, err := GetGlobalCache()
	if err != nil {
		t.Fatalf("Failed to open global cache: %v", err)
	}
	return cacheDB
}

func TestInvalidateCacheCmd_SingleSource(t *testing.T) {
	cacheDB := setupGlobalCacheDB(t)

	if err := cacheDB.Set("jikan_cache", "1", `{"image_url":"x"}`, 0); err != nil {
		t.Fatalf("Failed to seed jikan_cache: %v", err)
	}
	if err := cacheDB.Set("mal_page_cache", "1", `{"image_url":"y"}`, 0); err != nil {
		t.Fatalf("Failed to seed mal_page_cache: %v", err)
	}

	cmd := InvalidateCacheCmd{Source: "jikan"}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if cacheDB.CacheExists("jikan_cache", "1") {
		t.Error("Expected jikan_cache to be emptied")
	}
	if !cacheDB.CacheExists("mal_page_cache", "1") {
		t.Error("Expected mal_page_cache to be untouched")
	}
}

func TestInvalidateCacheCmd_All(t *testing.T) {
	cacheDB := setupGlobalCacheDB(t)

	if err := cacheDB.Set("jikan_cache", "1", `{"image_url":"x"}`, 0); err != nil {
		t.Fatalf("Failed to seed jikan_cache: %v", err)
	}
	if err := cacheDB.Set("mal_page_cache", "2", `{"image_url":"y"}`, 0); err != nil {
		t.Fatalf("Failed to seed mal_page_cache: %v", err)
	}

	cmd := InvalidateCacheCmd{Source: "all"}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if cacheDB.CacheExists("jikan_cache", "1") {
		t.Error("Expected jikan_cache to be emptied")
	}
	if cacheDB.CacheExists("mal_page_cache", "2") {
		t.Error("Expected mal_page_cache to be emptied")
	}
}

func TestInvalidateCacheCmd_UnknownSource(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := InvalidateCacheCmd{Source: "bogus"}
	err := cmd.Run()
	if err == nil {
		t.Fatal("Expected error for unknown source")
	}
	if !strings.Contains(err.Error(), "invalid cache source") {
		t.Errorf("Unexpected error message: %v", err)
	}
}
