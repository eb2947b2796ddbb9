// Package importer rebuilds the anime SQLite database from a CSV export.
package importer

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultBatchSize is the number of inserted rows between transaction
// commits when neither the flag nor the config sets one.
const DefaultBatchSize = 500

// ImportCmd represents the import command
type ImportCmd struct {
	Input     string `short:"f" help:"Path to the anime CSV export (required if not in config)"`
	Database  string `short:"d" help:"Path to the SQLite database to rebuild (default: anime.db next to the input)"`
	BatchSize int    `help:"Rows per transaction commit (default 500)"`
}

func (c *ImportCmd) Run() error {
	input := c.Input
	if input == "" {
		input = viper.GetString("import.csvfile")
	}
	if input == "" {
		return fmt.Errorf("no input CSV file given: set --input or import.csvfile in config")
	}

	database := c.Database
	if database == "" {
		database = viper.GetString("import.dbfile")
	}
	if database == "" {
		database = filepath.Join(filepath.Dir(input), "anime.db")
	}

	batchSize := c.BatchSize
	if batchSize <= 0 {
		batchSize = viper.GetInt("import.batchsize")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return importAnimeFunc(Options{
		CSVFile:   input,
		Database:  database,
		BatchSize: batchSize,
	})
}

var importAnimeFunc = ImportAnime

// Options holds configuration for one import run.
type Options struct {
	// CSVFile is the anime export to read
	CSVFile string
	// Database is the SQLite file to rebuild; prior contents are lost
	Database string
	// BatchSize is the number of inserted rows per commit
	BatchSize int
}
