package settings

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// SQLite is a Store keeping records in a SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := ensureParent(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store %s: %w", path, err)
	}

	ctx := context.Background()
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS records (
			grp  TEXT NOT NULL,
			idx  INTEGER NOT NULL,
			name TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (grp, idx)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialising sqlite store %s: %w", path, err)
		}
	}

	return &SQLite{db: db, path: path}, nil
}

// ReadArray implements Store.
func (s *SQLite) ReadArray(ctx context.Context, group string) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, text FROM records WHERE grp = ? ORDER BY idx`, group)
	if err != nil {
		return nil, fmt.Errorf("querying group %s: %w", group, err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		var r types.Record
		if err := rows.Scan(&r.Name, &r.Text); err != nil {
			return nil, fmt.Errorf("scanning group %s: %w", group, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// WriteArray implements Store. The group is replaced in one transaction.
func (s *SQLite) WriteArray(ctx context.Context, group string, records []types.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE grp = ?`, group); err != nil {
		return fmt.Errorf("clearing group %s: %w", group, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (grp, idx, name, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, group, i, r.Name, r.Text); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing group %s: %w", group, err)
	}
	return nil
}

// Writable implements Store.
func (s *SQLite) Writable() bool { return accessWritable(s.path) }

// Location implements Store.
func (s *SQLite) Location() string { return s.path }

// Close implements Store.
func (s *SQLite) Close() error { return s.db.Close() }
