package cmd

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/maldb/cmd/enrich"
	"github.com/lepinkainen/maldb/cmd/importer"
	"github.com/lepinkainen/maldb/internal/cache"
	"github.com/lepinkainen/maldb/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetCmdState(t *testing.T) {
	origUpdate := config.UpdateCovers

	t.Cleanup(func() {
		config.UpdateCovers = origUpdate
		viper.Reset()
	})

	viper.Reset()
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"maldb"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("maldb"),
		kong.Description("A tool to enrich MyAnimeList CSV exports and rebuild them as a relational SQLite database."),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)

	return cli, ctx
}

func TestUpdateGlobalConfig(t *testing.T) {
	resetCmdState(t)

	cli := &CLI{
		CacheDBFile: "/tmp/cache.db",
		CacheTTL:    "12h",
	}

	updateGlobalConfig(cli)

	assert.Equal(t, "/tmp/cache.db", viper.GetString("cache.dbfile"))
	assert.Equal(t, "12h", viper.GetString("cache.ttl"))
}

func TestUpdateGlobalConfigKeepsConfigValues(t *testing.T) {
	resetCmdState(t)

	// Values from the config file survive when the flags are not given
	viper.Set("cache.dbfile", "/from/config/cache.db")
	viper.Set("cache.ttl", "48h")

	updateGlobalConfig(&CLI{})

	assert.Equal(t, "/from/config/cache.db", viper.GetString("cache.dbfile"))
	assert.Equal(t, "48h", viper.GetString("cache.ttl"))
}

func TestUpdateGlobalConfigAppliesLogLevel(t *testing.T) {
	resetCmdState(t)

	origLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origLogger) })

	updateGlobalConfig(&CLI{LogLevel: "debug"})

	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestImportCommandParsing(t *testing.T) {
	resetCmdState(t)

	// Test that Kong correctly parses import command structure
	cli, _ := parseCLI(t, "import", "-f", "anime.csv", "-d", "anime.db", "--batch-size", "250")

	assert.Equal(t, "anime.csv", cli.Import.Input)
	assert.Equal(t, "anime.db", cli.Import.Database)
	assert.Equal(t, 250, cli.Import.BatchSize)
}

func TestEnrichCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "enrich",
		"-f", "anime.csv",
		"-o", "anime_with_images.csv",
		"--scrape-fallback",
		"--download-covers",
		"--covers-dir", "art",
		"--max-width", "320",
		"--update-covers")

	assert.Equal(t, "anime.csv", cli.Enrich.Input)
	assert.Equal(t, "anime_with_images.csv", cli.Enrich.Output)
	assert.True(t, cli.Enrich.ScrapeFallback)
	assert.True(t, cli.Enrich.DownloadCovers)
	assert.Equal(t, "art", cli.Enrich.CoversDir)
	assert.Equal(t, 320, cli.Enrich.MaxWidth)
	assert.True(t, cli.Enrich.UpdateCovers)
}

func TestCacheInvalidateParsing(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "cache", "invalidate", "jikan")

	assert.Equal(t, "jikan", cli.Cache.Invalidate.Source)
}

func TestCommandsRequireInput(t *testing.T) {
	resetCmdState(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "import missing input",
			args: []string{"import"},
			want: "no input CSV file given",
		},
		{
			name: "enrich missing input",
			args: []string{"enrich"},
			want: "no input CSV file given",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, ctx := parseCLI(t, tt.args...)
			updateGlobalConfig(cli)
			err := ctx.Run()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCLIDefaultFlags(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "enrich", "-f", "anime.csv")

	// Global flags have no Kong defaults so config file values win
	assert.Empty(t, cli.LogLevel, "LogLevel should default to empty")
	assert.Empty(t, cli.CacheDBFile, "CacheDBFile should default to empty")
	assert.Empty(t, cli.CacheTTL, "CacheTTL should default to empty")

	// Enrich command defaults
	assert.Equal(t, "covers", cli.Enrich.CoversDir, "CoversDir should default to covers")
	assert.Equal(t, 500, cli.Enrich.MaxWidth, "MaxWidth should default to 500")
	assert.False(t, cli.Enrich.ScrapeFallback, "ScrapeFallback should default to false")
	assert.False(t, cli.Enrich.DownloadCovers, "DownloadCovers should default to false")
}

func TestInitConfigSetsDefaults(t *testing.T) {
	resetCmdState(t)

	// Set defaults directly without calling initConfig to avoid os.Exit
	viper.SetDefault("import.batchsize", importer.DefaultBatchSize)
	viper.SetDefault("cache.dbfile", "./apicache.db")
	viper.SetDefault("cache.ttl", "720h")

	// Verify default values are accessible from viper
	assert.Equal(t, 500, viper.GetInt("import.batchsize"))
	assert.Equal(t, "./apicache.db", viper.GetString("cache.dbfile"))
	assert.Equal(t, "720h", viper.GetString("cache.ttl"))
}

func TestEnvironmentVariableBinding(t *testing.T) {
	resetCmdState(t)

	t.Setenv("MALDB_USER_AGENT", "custom-agent/2.0")

	// Set up environment variable bindings without calling initConfig
	viper.AutomaticEnv()
	require.NoError(t, viper.BindEnv("enrich.useragent", "MALDB_USER_AGENT"))

	assert.Equal(t, "custom-agent/2.0", viper.GetString("enrich.useragent"))
}

func TestInitLogging(t *testing.T) {
	origLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origLogger) })

	tests := []struct {
		name     string
		envValue string
		debugOn  bool
	}{
		{"default", "", false},
		{"debug", "debug", true},
		{"DEBUG", "DEBUG", true},
		{"info", "info", false},
		{"warn", "warn", false},
		{"error", "error", false},
		{"invalid", "invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("MALDB_LOG_LEVEL", tt.envValue)
			}
			require.NotPanics(t, func() {
				initLogging()
			})
			assert.Equal(t, tt.debugOn, slog.Default().Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestCommandStructure(t *testing.T) {
	resetCmdState(t)

	// Verify that CLI structure has all expected commands
	cli := &CLI{}

	assert.IsType(t, importer.ImportCmd{}, cli.Import)
	assert.IsType(t, enrich.EnrichCmd{}, cli.Enrich)
	assert.IsType(t, cache.InvalidateCacheCmd{}, cli.Cache.Invalidate)
}
