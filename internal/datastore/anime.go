package datastore

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// AnimeRecord is one row of the Anime table as persisted by an import
// run. Text attributes are stored as-is, empty string when the input
// column is absent. Score and Episodes use nullable types so that
// unparseable values land as NULL rather than zero.
type AnimeRecord struct {
	MALID       int64
	Image       string
	Title       string
	ReleaseDate string
	Synopsis    string
	Score       sql.NullFloat64
	Episodes    sql.NullInt64
	Studio      string
	Theme       string
}

// AnimeTx is a write transaction covering one batch of imported rows.
// Statement failures inside the transaction do not poison it; the
// caller may skip the failed row and keep inserting.
type AnimeTx struct {
	tx       *sql.Tx
	squirrel sq.StatementBuilderType
}

// InsertAnime writes one record and returns its surrogate row id.
func (t *AnimeTx) InsertAnime(rec AnimeRecord) (int64, error) {
	queryBuilder := t.squirrel.
		Insert("Anime").
		Columns("mal_id", "image", "title", "release_date", "synopsis", "score", "episodes", "studio", "theme").
		Values(rec.MALID, rec.Image, rec.Title, rec.ReleaseDate, rec.Synopsis, rec.Score, rec.Episodes, rec.Studio, rec.Theme)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building query")
	}

	result, err := t.tx.Exec(query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "error executing query")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "error reading insert id")
	}

	return id, nil
}

// EnsureGenre inserts the genre name if absent and returns its id.
// Names are compared byte for byte, so "Action" and "action" are
// distinct genres.
func (t *AnimeTx) EnsureGenre(name string) (int64, error) {
	insert, insertArgs, err := t.squirrel.
		Insert("Genres").
		Options("OR IGNORE").
		Columns("name").
		Values(name).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building query")
	}

	if _, err := t.tx.Exec(insert, insertArgs...); err != nil {
		return 0, errors.Wrap(err, "error executing query")
	}

	query, args, err := t.squirrel.
		Select("genre_id").
		From("Genres").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building query")
	}

	var id int64
	if err := t.tx.QueryRow(query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "error scanning genre id")
	}

	return id, nil
}

// LinkGenre associates an anime row with a genre. Inserting the same
// pair twice is a no-op.
func (t *AnimeTx) LinkGenre(animeID, genreID int64) error {
	query, args, err := t.squirrel.
		Insert("AnimeGenres").
		Options("OR IGNORE").
		Columns("anime_id", "genre_id").
		Values(animeID, genreID).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	if _, err := t.tx.Exec(query, args...); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	return nil
}

// Commit flushes the batch to disk.
func (t *AnimeTx) Commit() error {
	return errors.Wrap(t.tx.Commit(), "failed to commit transaction")
}

// Rollback abandons the batch. Calling it after Commit is harmless.
func (t *AnimeTx) Rollback() error {
	return t.tx.Rollback()
}
