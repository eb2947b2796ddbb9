package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// UserAgent is sent on every outgoing HTTP request
	UserAgent string
	// Referer is sent on every MyAnimeList-bound HTTP request
	Referer string
	// UpdateCovers controls whether existing cover image files are re-downloaded
	UpdateCovers bool
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("enrich.useragent", "Mozilla/5.0 (compatible; AnimeImageFetcher/1.0; +https://example.local/)")
	viper.SetDefault("enrich.referer", "https://myanimelist.net/")
	viper.SetDefault("UpdateCovers", false)

	// Get values from viper
	UserAgent = viper.GetString("enrich.useragent")
	Referer = viper.GetString("enrich.referer")
	UpdateCovers = viper.GetBool("UpdateCovers")
}

// SetUpdateCovers sets the UpdateCovers flag
func SetUpdateCovers(update bool) {
	UpdateCovers = update
}
