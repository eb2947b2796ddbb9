package datastore

// dropSchema removes any prior run's tables, children before parents
// so foreign key constraints are satisfied during the drop.
const dropSchema = `
DROP TABLE IF EXISTS AnimeGenres;
DROP TABLE IF EXISTS Genres;
DROP TABLE IF EXISTS Anime;
`

// animeSchema is the relational schema built fresh on every import run.
const animeSchema = `
CREATE TABLE Anime (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mal_id INTEGER,
	image TEXT,
	title TEXT,
	release_date TEXT,
	synopsis TEXT,
	score REAL,
	episodes INTEGER,
	studio TEXT,
	theme TEXT
);

CREATE TABLE Genres (
	genre_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE
);

CREATE TABLE AnimeGenres (
	anime_id INTEGER,
	genre_id INTEGER,
	PRIMARY KEY (anime_id, genre_id),
	FOREIGN KEY (anime_id) REFERENCES Anime(id),
	FOREIGN KEY (genre_id) REFERENCES Genres(genre_id)
);
`
