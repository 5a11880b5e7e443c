// Package auditdb stores the outcome of a conversion run in SQLite so the
// bibliography can be inspected with any SQL client.
//
// The database is rebuilt from scratch by every run: it reflects the last
// conversion only.
package auditdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alnah/go-md2tex/internal/bibliography"
)

// ErrDatabase indicates the audit database could not be opened or written.
var ErrDatabase = errors.New("audit database error")

// Snapshot is everything recorded for one run.
type Snapshot struct {
	Time     time.Time
	Sections int
	Entries  []bibliography.Entry
	Notes    []bibliography.Resolution
	Entities []string // annotated entity names
}

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrDatabase, path, err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating schema in %s: %v", ErrDatabase, path, err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// schemaVersion is stored in PRAGMA user_version. A database written with
// another version is dropped and recreated; it only ever holds the last run.
const schemaVersion = 2

var tables = []string{"entry_fields", "entries", "notes", "entities", "runs"}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version != schemaVersion {
		for _, table := range tables {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return err
			}
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			finished_at TEXT NOT NULL,
			sections INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			notes INTEGER NOT NULL,
			unresolved INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			source_text TEXT NOT NULL
		);

		-- One row per BibTeX field, position keeps the written order
		CREATE TABLE IF NOT EXISTS entry_fields (
			entry_key TEXT NOT NULL REFERENCES entries(key),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (entry_key, name)
		);

		-- position is the document index in the run; a document listed twice
		-- gets one row per listing
		CREATE TABLE IF NOT EXISTS notes (
			position INTEGER NOT NULL,
			document TEXT NOT NULL,
			note_key TEXT NOT NULL,
			outcome TEXT NOT NULL,
			entry_key TEXT,
			text TEXT NOT NULL,
			PRIMARY KEY (position, note_key)
		);

		CREATE INDEX IF NOT EXISTS idx_notes_entry ON notes(entry_key) WHERE entry_key IS NOT NULL;

		CREATE TABLE IF NOT EXISTS entities (
			name TEXT PRIMARY KEY
		);
	`

	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

// Rebuild replaces the database content with s in a single transaction.
func (d *DB) Rebuild(ctx context.Context, s Snapshot) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range tables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: clearing %s: %v", ErrDatabase, table, err)
		}
	}

	if err = insertEntries(ctx, tx, s.Entries); err != nil {
		return err
	}
	if err = insertNotes(ctx, tx, s.Notes); err != nil {
		return err
	}
	if err = insertEntities(ctx, tx, s.Entities); err != nil {
		return err
	}

	unresolved := 0
	for _, n := range s.Notes {
		if n.Outcome == bibliography.OutcomeUnresolved {
			unresolved++
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (finished_at, sections, entries, notes, unresolved) VALUES (?, ?, ?, ?, ?)`,
		s.Time.UTC().Format(time.RFC3339), s.Sections, len(s.Entries), len(s.Notes), unresolved)
	if err != nil {
		return fmt.Errorf("%w: recording run: %v", ErrDatabase, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []bibliography.Entry) error {
	entryStmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (key, type, source_text) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: preparing entries insert: %v", ErrDatabase, err)
	}
	defer entryStmt.Close()

	fieldStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entry_fields (entry_key, position, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: preparing fields insert: %v", ErrDatabase, err)
	}
	defer fieldStmt.Close()

	for _, e := range entries {
		if _, err := entryStmt.ExecContext(ctx, e.Key, string(e.Type), e.SourceText); err != nil {
			return fmt.Errorf("%w: inserting entry %s: %v", ErrDatabase, e.Key, err)
		}
		if e.Fields == nil {
			continue
		}
		var fieldErr error
		pos := 0
		e.Fields.Each(func(name, value string) {
			if fieldErr != nil {
				return
			}
			_, fieldErr = fieldStmt.ExecContext(ctx, e.Key, pos, name, value)
			pos++
		})
		if fieldErr != nil {
			return fmt.Errorf("%w: inserting fields of %s: %v", ErrDatabase, e.Key, fieldErr)
		}
	}
	return nil
}

func insertNotes(ctx context.Context, tx *sql.Tx, notes []bibliography.Resolution) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notes (position, document, note_key, outcome, entry_key, text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: preparing notes insert: %v", ErrDatabase, err)
	}
	defer stmt.Close()

	for _, n := range notes {
		var entryKey sql.NullString
		if n.EntryKey != "" {
			entryKey = sql.NullString{String: n.EntryKey, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, n.Position, n.Document, n.Key, string(n.Outcome), entryKey, n.Text); err != nil {
			return fmt.Errorf("%w: inserting note %s of %s: %v", ErrDatabase, n.Key, n.Document, err)
		}
	}
	return nil
}

func insertEntities(ctx context.Context, tx *sql.Tx, names []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO entities (name) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("%w: preparing entities insert: %v", ErrDatabase, err)
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("%w: inserting entity %s: %v", ErrDatabase, name, err)
		}
	}
	return nil
}
