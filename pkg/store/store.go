// Package store persists the reading corpus and the vocabulary stat map
// in SQLite. The stat map is treated as an in-memory value replaced
// wholesale on each save; there is no partial-write API.
package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/japaniel/margin/pkg/corpus"
	"github.com/japaniel/margin/pkg/vocab"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Document is a persisted corpus source: the raw imported text plus
// provenance. The tokenized form is re-derived on load, never stored.
type Document struct {
	ID        string
	Title     string
	Author    string
	Language  string
	SourceURL string
	Content   string
	AddedAt   time.Time
}

// SaveDocument inserts or replaces an imported document.
func SaveDocument(db DBExecutor, doc Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("document id must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO documents (id, title, author, language, source_url, content, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			language = excluded.language,
			source_url = excluded.source_url,
			content = excluded.content`,
		doc.ID, doc.Title, doc.Author, doc.Language, doc.SourceURL, doc.Content, doc.AddedAt)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents in import order, without content.
func ListDocuments(db DBExecutor) ([]Document, error) {
	rows, err := db.Query(`SELECT id, title, author, language, source_url, added_at FROM documents ORDER BY added_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		var title, author, lang, url sql.NullString
		var added sql.NullTime
		if err := rows.Scan(&d.ID, &title, &author, &lang, &url, &added); err != nil {
			return nil, err
		}
		d.Title = title.String
		d.Author = author.String
		d.Language = lang.String
		d.SourceURL = url.String
		d.AddedAt = added.Time
		out = append(out, d)
	}
	return out, rows.Err()
}

// LoadCorpus reads every document and re-tokenizes it into the ordered
// corpus. Token ids are derived from document ids, so they are stable
// across loads.
func LoadCorpus(db DBExecutor) (corpus.Corpus, error) {
	rows, err := db.Query(`SELECT id, title, author, language, content FROM documents ORDER BY added_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var c corpus.Corpus
	for rows.Next() {
		var id, content string
		var title, author, lang sql.NullString
		if err := rows.Scan(&id, &title, &author, &lang, &content); err != nil {
			return nil, err
		}
		c = append(c, corpus.Document{
			ID:         id,
			Title:      title.String,
			Author:     author.String,
			Language:   lang.String,
			Paragraphs: corpus.Tokenize(content, id),
		})
	}
	return c, rows.Err()
}

// LoadStats reads the whole persisted stat map, interaction logs included.
func LoadStats(db DBExecutor) (map[string]vocab.VocabularyStat, error) {
	stats := make(map[string]vocab.VocabularyStat)

	rows, err := db.Query(`SELECT lemma, total_occurrences, relative_difficulty, first_discovery_progress,
		implicit_score, explicit_score, mastery_score, familiarity, review_count, definition, last_encounter_at
		FROM vocabulary_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s vocab.VocabularyStat
		var familiarity int
		var definition sql.NullString
		var lastEncounter sql.NullTime
		if err := rows.Scan(&s.Lemma, &s.TotalOccurrences, &s.RelativeDifficulty, &s.FirstDiscoveryProgress,
			&s.ImplicitScore, &s.ExplicitScore, &s.MasteryScore, &familiarity, &s.ReviewCount,
			&definition, &lastEncounter); err != nil {
			return nil, err
		}
		s.Familiarity = vocab.Familiarity(familiarity)
		s.Definition = definition.String
		s.LastEncounterDate = lastEncounter.Time
		stats[s.Lemma] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	irows, err := db.Query(`SELECT lemma, occurred_at, occurrence_id, kind, weight FROM interactions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var lemma, kind string
		var occurrenceID sql.NullString
		var at time.Time
		var weight float64
		if err := irows.Scan(&lemma, &at, &occurrenceID, &kind, &weight); err != nil {
			return nil, err
		}
		s, ok := stats[lemma]
		if !ok {
			continue
		}
		s.Interactions = append(s.Interactions, vocab.MemoryInteraction{
			Timestamp:    at,
			OccurrenceID: occurrenceID.String,
			Kind:         vocab.InteractionKind(kind),
			Weight:       weight,
		})
		stats[lemma] = s
	}
	return stats, irows.Err()
}

// SaveStats replaces the persisted stat map wholesale inside one
// transaction, matching the engine's "replace the whole value" model.
func SaveStats(db *sql.DB, stats map[string]vocab.VocabularyStat) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	if _, err := tx.Exec(`DELETE FROM interactions`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM vocabulary_stats`); err != nil {
		return err
	}

	lemmas := make([]string, 0, len(stats))
	for lemma := range stats {
		lemmas = append(lemmas, lemma)
	}
	sort.Strings(lemmas)

	for _, lemma := range lemmas {
		s := stats[lemma]
		if _, err := tx.Exec(`INSERT INTO vocabulary_stats (lemma, total_occurrences, relative_difficulty,
			first_discovery_progress, implicit_score, explicit_score, mastery_score, familiarity,
			review_count, definition, last_encounter_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.Lemma, s.TotalOccurrences, s.RelativeDifficulty, s.FirstDiscoveryProgress,
			s.ImplicitScore, s.ExplicitScore, s.MasteryScore, int(s.Familiarity),
			s.ReviewCount, nullableString(s.Definition), nullableTime(s.LastEncounterDate)); err != nil {
			return fmt.Errorf("insert stat %s: %w", s.Lemma, err)
		}
		for _, in := range s.Interactions {
			if _, err := tx.Exec(`INSERT INTO interactions (lemma, occurred_at, occurrence_id, kind, weight)
				VALUES (?, ?, ?, ?, ?)`,
				s.Lemma, in.Timestamp, nullableString(in.OccurrenceID), string(in.Kind), in.Weight); err != nil {
				return fmt.Errorf("insert interaction for %s: %w", s.Lemma, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stats (%d lemmas): %w", len(stats), err)
	}
	return nil
}

// nullableString returns nil for "" so empty text stays NULL in SQLite.
func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func nullableTime(v time.Time) interface{} {
	if v.IsZero() {
		return nil
	}
	return v
}
