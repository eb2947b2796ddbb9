package importer

import (
	"io"
	"log/slog"

	"github.com/lepinkainen/maldb/internal/csvutil"
	"github.com/lepinkainen/maldb/internal/datastore"
)

// ImportAnime rebuilds the target database from the CSV export. The
// schema is dropped and recreated first, so any data from a prior run
// is lost. Bad rows are logged and skipped; only a missing, unreadable,
// or empty input file aborts the run.
func ImportAnime(opts Options) error {
	reader, err := csvutil.Open(opts.CSVFile)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	columns := ResolveColumns(reader.Header())
	slog.Debug("Detected CSV columns", "columns", NormalizedHeader(reader.Header()))

	store, err := datastore.NewAnimeStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Rebuild(); err != nil {
		return err
	}

	slog.Info("Starting anime import", "csv", opts.CSVFile, "database", opts.Database, "batchSize", opts.BatchSize)

	tx, err := store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	inserted := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Row skipped", "row", row.Number, "error", err)
			continue
		}

		if err := importRow(tx, columns, row); err != nil {
			slog.Warn("Row skipped", "row", row.Number, "error", err)
			continue
		}

		inserted++
		if inserted%opts.BatchSize == 0 {
			if err := tx.Commit(); err != nil {
				return err
			}
			slog.Info("Import progress", "inserted", inserted)

			if tx, err = store.Begin(); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	tx = nil

	count, err := store.CountAnime()
	if err != nil {
		return err
	}
	slog.Info("Import complete", "rows", count)

	return nil
}

// importRow persists a single CSV row: the anime record itself, then
// its genres with insert-if-absent links. Returning an error skips the
// row without aborting the batch.
func importRow(tx *datastore.AnimeTx, columns Columns, row csvutil.Row) error {
	malID, err := ParseMALID(row.Get(columns.MALID))
	if err != nil {
		return err
	}

	animeID, err := tx.InsertAnime(datastore.AnimeRecord{
		MALID:       malID,
		Image:       row.Get(columns.Image),
		Title:       row.Get(columns.Title),
		ReleaseDate: row.Get(columns.Release),
		Synopsis:    row.Get(columns.Synopsis),
		Score:       ParseScore(row.Get(columns.Score)),
		Episodes:    ParseEpisodes(row.Get(columns.Episodes)),
		Studio:      row.Get(columns.Studio),
		Theme:       row.Get(columns.Theme),
	})
	if err != nil {
		return err
	}

	for _, genre := range ParseGenres(row.Get(columns.Genre)) {
		genreID, err := tx.EnsureGenre(genre)
		if err != nil {
			return err
		}
		if err := tx.LinkGenre(animeID, genreID); err != nil {
			return err
		}
	}

	return nil
}
