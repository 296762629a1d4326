package store

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT,
	author TEXT,
	language TEXT,
	source_url TEXT,
	content TEXT NOT NULL,
	added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS vocabulary_stats (
	lemma TEXT PRIMARY KEY,
	total_occurrences INTEGER NOT NULL DEFAULT 0,
	relative_difficulty REAL NOT NULL DEFAULT 0,
	first_discovery_progress REAL NOT NULL DEFAULT 0,
	implicit_score REAL NOT NULL DEFAULT 0,
	explicit_score REAL NOT NULL DEFAULT 0,
	mastery_score REAL NOT NULL DEFAULT 0,
	familiarity INTEGER NOT NULL DEFAULT 0,
	review_count INTEGER NOT NULL DEFAULT 0,
	definition TEXT,
	last_encounter_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS interactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lemma TEXT NOT NULL,
	occurred_at TIMESTAMP NOT NULL,
	occurrence_id TEXT,
	kind TEXT NOT NULL,
	weight REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_lemma ON interactions(lemma)
`

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
