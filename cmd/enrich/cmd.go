// Package enrich adds cover image URLs from the Jikan API to an anime
// CSV export.
package enrich

import (
	"fmt"

	"github.com/lepinkainen/maldb/internal/config"
	"github.com/lepinkainen/maldb/internal/fileutil"
	"github.com/spf13/viper"
)

// EnrichCmd represents the enrich command
type EnrichCmd struct {
	Input          string `short:"f" help:"Path to the anime CSV export (required if not in config)"`
	Output         string `short:"o" help:"Output CSV path (default: input name with _with_images appended)"`
	ScrapeFallback bool   `help:"Scrape the MyAnimeList page when the API has no image"`
	DownloadCovers bool   `help:"Download each cover image to the covers directory"`
	CoversDir      string `help:"Directory for downloaded covers" default:"covers"`
	MaxWidth       int    `help:"Resize downloaded covers wider than this many pixels" default:"500"`
	UpdateCovers   bool   `help:"Re-download covers that already exist on disk"`
}

func (c *EnrichCmd) Run() error {
	input := c.Input
	if input == "" {
		input = viper.GetString("enrich.csvfile")
	}
	if input == "" {
		return fmt.Errorf("no input CSV file given: set --input or enrich.csvfile in config")
	}

	output := c.Output
	if output == "" {
		output = viper.GetString("enrich.outfile")
	}
	if output == "" {
		output = fileutil.DerivedOutputPath(input)
	}

	if c.UpdateCovers {
		config.SetUpdateCovers(true)
	}

	return enrichAnimeFunc(Options{
		CSVFile:        input,
		Output:         output,
		ScrapeFallback: c.ScrapeFallback,
		DownloadCovers: c.DownloadCovers,
		CoversDir:      c.CoversDir,
		MaxWidth:       c.MaxWidth,
	})
}

var enrichAnimeFunc = EnrichAnime
