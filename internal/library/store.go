// Package library keeps the history of imported sessions in SQLite
package library

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"fiapo/internal/errors"
	"fiapo/internal/log"
)

//go:embed db/schema.sql
var dbFS embed.FS

// Import is one successful "Import files" action
type Import struct {
	ID         string
	Paths      []string
	TotalPages int
	ImportedAt time.Time
}

// Store records imports
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. An empty path keeps the
// history in memory.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewFileError("cannot create library directory", filepath.Dir(path), errors.FileAccessDenied, err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to open SQLite database", err).WithOperation("open")
	}
	// Every connection to :memory: is a separate database
	if path == "" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to enable WAL mode", err).WithOperation("open")
	}

	schema, err := dbFS.ReadFile("db/schema.sql")
	if err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to read schema SQL", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to initialize database schema", err).WithOperation("migrate")
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordImport stores an import of paths holding total pages
func (s *Store) RecordImport(ctx context.Context, paths []string, total int) (*Import, error) {
	encoded, err := json.Marshal(paths)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to encode paths", err).WithOperation("record_import")
	}

	imp := &Import{
		ID:         uuid.New().String(),
		Paths:      append([]string(nil), paths...),
		TotalPages: total,
		ImportedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO imports (id, paths, total_pages, imported_at) VALUES (?, ?, ?, ?)`,
		imp.ID, string(encoded), imp.TotalPages, imp.ImportedAt)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to insert import", err).WithOperation("record_import")
	}

	log.LogWithFields(log.F("id", imp.ID), log.F("pages", total)).Debug("Import recorded")
	return imp, nil
}

// Recent returns up to limit imports, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]*Import, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paths, total_pages, imported_at FROM imports ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query imports", err).WithOperation("recent")
	}
	defer rows.Close()

	var imports []*Import
	for rows.Next() {
		var (
			imp     Import
			encoded string
		)
		if err := rows.Scan(&imp.ID, &encoded, &imp.TotalPages, &imp.ImportedAt); err != nil {
			return nil, errors.NewDatabaseError("failed to scan import", err).WithOperation("recent")
		}
		if err := json.Unmarshal([]byte(encoded), &imp.Paths); err != nil {
			log.LogWithFields(log.F("id", imp.ID), log.F("error", err.Error())).Warn("Skipping import with corrupt paths")
			continue
		}
		imports = append(imports, &imp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("failed to read imports", err).WithOperation("recent")
	}
	return imports, nil
}

// Forget deletes the import with id
func (s *Store) Forget(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete import", err).WithOperation("forget")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewDatabaseError("no import with id "+id, nil).WithOperation("forget")
	}
	return nil
}
