package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/maldb/cmd/enrich"
	"github.com/lepinkainen/maldb/cmd/importer"
	"github.com/lepinkainen/maldb/internal/cache"
	"github.com/lepinkainen/maldb/internal/config"
	"github.com/spf13/viper"
)

// CLI represents the complete command structure for the maldb application
type CLI struct {
	// Global flags
	LogLevel string `help:"Log level: debug, info, warn or error (default info)"`

	// Cache flags; config file values apply when these are not given
	CacheDBFile string `help:"Path to the API cache SQLite database"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`

	Import importer.ImportCmd `cmd:"" help:"Rebuild the anime SQLite database from a CSV export"`
	Enrich enrich.EnrichCmd   `cmd:"" help:"Add cover image URLs from the Jikan API to an anime CSV"`
	Cache  CacheCmd           `cmd:"" help:"Manage cached API responses"`
}

// CacheCmd groups the cache maintenance subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Drop cached responses for a source"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	// Create CLI instance
	var cli CLI

	// Parse command line with Kong
	ctx := kong.Parse(&cli,
		kong.Name("maldb"),
		kong.Description("A tool to enrich MyAnimeList CSV exports and rebuild them as a relational SQLite database."),
		kong.UsageOnError(),
	)

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	// Execute the selected command
	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Importer defaults
	viper.SetDefault("import.batchsize", importer.DefaultBatchSize)

	// Cache defaults
	viper.SetDefault("cache.dbfile", "./apicache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	if err := viper.BindEnv("enrich.useragent", "MALDB_USER_AGENT"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("maldb")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/maldb/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

// updateGlobalConfig applies global flags over config file values.
// Flags the user did not give leave the config untouched.
func updateGlobalConfig(cli *CLI) {
	if cli.LogLevel != "" {
		setLogLevel(cli.LogLevel)
	}
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
}

func initLogging() {
	setLogLevel(os.Getenv("MALDB_LOG_LEVEL"))
}

// setLogLevel replaces the default logger with a human-readable handler
// at the given level
func setLogLevel(level string) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: parseLogLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

// parseLogLevel maps a level name to a slog level. Unknown or empty
// names fall back to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
