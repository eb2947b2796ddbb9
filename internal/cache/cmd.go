package cache

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// sourceTables maps CLI source names to cache table names
var sourceTables = map[string]string{
	"jikan":   "jikan_cache",
	"malpage": "mal_page_cache",
}

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: jikan, malpage, all" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	cacheDB := viper.GetString("cache.dbfile")

	slog.Info("Invalidating cache", "source", i.Source, "database", cacheDB)

	var tables []string
	if i.Source == "all" {
		for _, table := range sourceTables {
			tables = append(tables, table)
		}
	} else {
		table, ok := sourceTables[i.Source]
		if !ok {
			return fmt.Errorf("invalid cache source '%s'; valid sources are: jikan, malpage, all", i.Source)
		}
		tables = []string{table}
	}

	// Get or create cache database
	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	var total int64
	for _, table := range tables {
		rowsDeleted, err := cacheInstance.InvalidateSource(table)
		if err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}
		total += rowsDeleted
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", total)
	return nil
}
