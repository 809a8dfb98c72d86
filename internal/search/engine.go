// Package search provides full-text search over a project's characters,
// backed by SQLite FTS5.
package search

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yshim/storyweaver/internal/project"
	"github.com/yshim/storyweaver/pkg/types"
)

// DBFile is the search database, stored alongside the character index.
const DBFile = "search.db"

// Result is one search hit.
type Result struct {
	Name    string
	Role    string
	Snippet string
	Score   float64
}

// Engine is an FTS5-backed search index over character records. The
// database is derived data: it can always be rebuilt from the record
// files via Reindex.
type Engine struct {
	db   *sql.DB
	path string
}

// Open opens or creates the search database for a project.
func Open(projectPath string) (*Engine, error) {
	dbPath := filepath.Join(projectPath, project.DataDir, DBFile)

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open search database: %w", err)
	}

	engine := &Engine{db: db, path: dbPath}
	if err := engine.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize search database: %w", err)
	}
	return engine, nil
}

func (e *Engine) initialize() error {
	schema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS characters_fts USING fts5(
		name,
		role,
		content,
		tokenize='porter unicode61'
	);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := e.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Path returns the database file path.
func (e *Engine) Path() string {
	return e.path
}

// IndexCharacter upserts one character into the index.
func (e *Engine) IndexCharacter(c *types.Character) error {
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM characters_fts WHERE name = ?", c.Basics.Name); err != nil {
		return fmt.Errorf("failed to remove stale index entry: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO characters_fts (name, role, content) VALUES (?, ?, ?)",
		c.Basics.Name, string(c.Basics.Role), flatten(c),
	); err != nil {
		return fmt.Errorf("failed to index character: %w", err)
	}

	return tx.Commit()
}

// Remove deletes a character from the index.
func (e *Engine) Remove(name string) error {
	if _, err := e.db.Exec("DELETE FROM characters_fts WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to remove from search index: %w", err)
	}
	return nil
}

// Search runs a full-text query with BM25 ranking, best matches first.
func (e *Engine) Search(query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}

	sanitized := sanitizeQuery(query)
	if sanitized == "" {
		return nil, nil
	}

	rows, err := e.db.Query(`
		SELECT
			name,
			role,
			snippet(characters_fts, 2, '**', '**', '...', 24),
			bm25(characters_fts) AS score
		FROM characters_fts
		WHERE characters_fts MATCH ?
		ORDER BY score
		LIMIT ?`,
		sanitized,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Name, &r.Role, &r.Snippet, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}
	return results, nil
}

// Reindex atomically replaces the whole index with the given characters.
func (e *Engine) Reindex(characters []*types.Character) error {
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM characters_fts"); err != nil {
		return fmt.Errorf("failed to clear search index: %w", err)
	}
	for _, c := range characters {
		if _, err := tx.Exec(
			"INSERT INTO characters_fts (name, role, content) VALUES (?, ?, ?)",
			c.Basics.Name, string(c.Basics.Role), flatten(c),
		); err != nil {
			return fmt.Errorf("failed to index %s: %w", c.Basics.Name, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed characters.
func (e *Engine) Count() (int64, error) {
	var count int64
	if err := e.db.QueryRow("SELECT COUNT(*) FROM characters_fts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count indexed characters: %w", err)
	}
	return count, nil
}

// flatten renders a character's searchable text: names, traits,
// appearance notes, backstory, and relationship dynamics.
func flatten(c *types.Character) string {
	var parts []string
	add := func(ss ...string) {
		for _, s := range ss {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}

	add(c.Basics.Name, c.Basics.Gender, string(c.Basics.Role))

	if a := c.Appearance; a != nil {
		if a.Hair != nil {
			add(a.Hair.Color, a.Hair.Style, a.Hair.Length)
		}
		if a.Eyes != nil {
			add(a.Eyes.Color, a.Eyes.Shape)
		}
		add(a.SkinTone, a.Height, a.Build, a.ClothingStyle)
		add(a.DistinctiveFeatures...)
		add(a.Accessories...)
	}

	if p := c.Personality; p != nil {
		add(p.PrimaryTraits...)
		add(p.SecondaryTraits...)
		add(p.Flaws...)
		add(p.SpeakingStyle)
		add(p.SpeechQuirks...)
		add(p.Motivations...)
		add(p.Fears...)
		add(p.Secrets...)
	}

	if b := c.Backstory; b != nil {
		add(b.Summary, b.Full)
		add(b.KeyEvents...)
		add(b.Secrets...)
	}

	for _, rel := range c.Relationships {
		add(rel.TargetCharacter, string(rel.Type), rel.Dynamic, rel.History)
	}

	return strings.Join(parts, " ")
}

// sanitizeQuery strips FTS5 operators so user input cannot produce
// syntax errors in MATCH.
func sanitizeQuery(query string) string {
	words := strings.Fields(query)
	var sanitized []string
	for _, word := range words {
		var b strings.Builder
		for _, ch := range word {
			if !strings.ContainsRune(`"*^:()-`, ch) {
				b.WriteRune(ch)
			}
		}
		if b.Len() > 0 {
			sanitized = append(sanitized, b.String())
		}
	}
	return strings.Join(sanitized, " ")
}
