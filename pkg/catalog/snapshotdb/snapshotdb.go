// Shelfmark
// Copyright (c) 2026 The Shelfmark Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Shelfmark.
//
// Shelfmark is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Shelfmark is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Shelfmark.  If not, see <http://www.gnu.org/licenses/>.

// Package snapshotdb caches the last full catalog listing in a local sqlite
// database so duplicate scans can be re-run without hitting the backend.
package snapshotdb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ShelfmarkProject/shelfmark-core/pkg/catalog"
	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrNoSnapshot is returned by Load when no snapshot has been stored yet.
var ErrNoSnapshot = errors.New("no catalog snapshot stored")

var migrationMutex sync.Mutex

// gooseZerologAdapter redirects goose output to zerolog instead of stdout.
type gooseZerologAdapter struct{}

func (*gooseZerologAdapter) Printf(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (*gooseZerologAdapter) Fatalf(format string, v ...any) {
	log.Fatal().Msgf(format, v...)
}

// SnapshotDB stores one catalog snapshot at a time.
type SnapshotDB struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path and runs
// pending migrations. The goose global state is locked so concurrent opens
// of different databases don't race on the migration filesystem.
func Open(path string) (*SnapshotDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening snapshot database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SnapshotDB{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	goose.SetLogger(&gooseZerologAdapter{})
	goose.SetBaseFS(migrationFiles)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("error running migrations up: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SnapshotDB) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("error closing snapshot database: %w", err)
	}
	return nil
}

// Store replaces the stored snapshot with records, stamping it with the
// current time.
func (s *SnapshotDB) Store(ctx context.Context, records []catalog.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		// no-op after commit
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_records"); err != nil {
		return fmt.Errorf("error clearing previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_records (id, title, status, authors, edition_count)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing insert statement")
		}
	}()

	for i := range records {
		authors, err := json.Marshal(records[i].Authors)
		if err != nil {
			return fmt.Errorf("error encoding authors for %q: %w", records[i].ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			records[i].ID,
			records[i].Title,
			string(records[i].Status),
			string(authors),
			records[i].EditionCount,
		)
		if err != nil {
			return fmt.Errorf("error inserting record %q: %w", records[i].ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (key, value) VALUES ('saved_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error stamping snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot: %w", err)
	}

	log.Debug().Int("records", len(records)).Msg("stored catalog snapshot")
	return nil
}

// Load returns the stored snapshot in insertion order, with the time it was
// taken. Returns ErrNoSnapshot when nothing has been stored.
func (s *SnapshotDB) Load(ctx context.Context) ([]catalog.Record, time.Time, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM snapshot_meta WHERE key = 'saved_at'").Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("error reading snapshot stamp: %w", err)
	}

	stamp, err := time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("error parsing snapshot stamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, authors, edition_count
		FROM snapshot_records ORDER BY rowid`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("error reading snapshot records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing snapshot rows")
		}
	}()

	var records []catalog.Record
	for rows.Next() {
		var rec catalog.Record
		var status, authors string
		if err := rows.Scan(&rec.ID, &rec.Title, &status, &authors, &rec.EditionCount); err != nil {
			return nil, time.Time{}, fmt.Errorf("error scanning snapshot record: %w", err)
		}
		rec.Status = catalog.AcquisitionStatus(status)
		if err := json.Unmarshal([]byte(authors), &rec.Authors); err != nil {
			return nil, time.Time{}, fmt.Errorf("error decoding authors for %q: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("error iterating snapshot records: %w", err)
	}

	return records, stamp, nil
}
