package datastore

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// AnimeStore owns the target SQLite database for the duration of an
// import run. The importer is strictly sequential, so the store keeps a
// single connection; session pragmas and the open transaction always
// land on the same handle.
type AnimeStore struct {
	handler  *sql.DB
	path     string
	squirrel sq.StatementBuilderType
}

// NewAnimeStore opens (creating if necessary) the SQLite database at path.
func NewAnimeStore(path string) (*AnimeStore, error) {
	store := &AnimeStore{
		path:     path,
		squirrel: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}

	dsn := path + "?_pragma=busy_timeout%3d1000&_pragma=foreign_keys(1)"

	handler, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open database")
	}
	handler.SetMaxOpenConns(1)

	if _, err := handler.Exec(`PRAGMA journal_mode = wal;`); err != nil {
		_ = handler.Close()
		return nil, errors.Wrap(err, "unable to enable WAL mode")
	}

	store.handler = handler
	return store, nil
}

// Rebuild drops any pre-existing tables and recreates the schema empty.
// Destructive: all data from prior runs in this database file is lost.
func (s *AnimeStore) Rebuild() error {
	tx, err := s.handler.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(dropSchema); err != nil {
		return errors.Wrap(err, "failed to drop existing tables")
	}

	if _, err := tx.Exec(animeSchema); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}

	return errors.Wrap(tx.Commit(), "failed to commit schema")
}

// Begin starts a write transaction covering one batch of imported rows.
func (s *AnimeStore) Begin() (*AnimeTx, error) {
	tx, err := s.handler.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	return &AnimeTx{tx: tx, squirrel: s.squirrel}, nil
}

// CountAnime returns the number of rows in the Anime table.
func (s *AnimeStore) CountAnime() (int, error) {
	query, args, err := s.squirrel.
		Select("COUNT(*)").
		From("Anime").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building query")
	}

	var count int
	if err := s.handler.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error counting rows")
	}

	return count, nil
}

// Path returns the database file path the store was opened with.
func (s *AnimeStore) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *AnimeStore) Close() error {
	if s.handler == nil {
		return nil
	}

	if _, err := s.handler.Exec(`PRAGMA optimize;`); err != nil {
		return errors.Wrap(err, "query planner optimization")
	}

	return s.handler.Close()
}
