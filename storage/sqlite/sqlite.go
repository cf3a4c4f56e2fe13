/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package sqlite implements a storage.Adapter on top of a SQLite database file. Records are kept
// one row per entity field; the dependency index is kept one row per query dependency.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/botobag/graphcache/storage"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store persists cache data in SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.Adapter = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadData implements storage.Adapter. Rows are sorted by entity and field.
func (s *Store) ReadData(ctx context.Context) ([]storage.Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entity, field, data FROM records ORDER BY entity, field`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var result []storage.Row
	for rows.Next() {
		var row storage.Row
		if err := rows.Scan(&row.Entity, &row.Field, &row.Data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if row.Data == nil {
			row.Data = []byte{}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return result, nil
}

// WriteData implements storage.Adapter. The rows are applied in one transaction.
func (s *Store) WriteData(ctx context.Context, rows []storage.Row) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, row := range rows {
			var err error
			switch {
			case row.Deleted() && len(row.Field) == 0:
				_, err = tx.ExecContext(ctx, `DELETE FROM records WHERE entity = ?`, row.Entity)

			case row.Deleted():
				_, err = tx.ExecContext(ctx, `DELETE FROM records WHERE entity = ? AND field = ?`, row.Entity, row.Field)

			default:
				_, err = tx.ExecContext(ctx,
					`INSERT INTO records (entity, field, data) VALUES (?, ?, ?)
					 ON CONFLICT (entity, field) DO UPDATE SET data = excluded.data`,
					row.Entity, row.Field, row.Data)
			}
			if err != nil {
				return fmt.Errorf("write record %s.%s: %w", row.Entity, row.Field, err)
			}
		}
		return nil
	})
}

// ReadMetadata implements storage.Adapter.
func (s *Store) ReadMetadata(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT query_key, dependency FROM dependencies ORDER BY query_key, dependency`)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	result := map[string][]string{}
	for rows.Next() {
		var queryKey, dependency string
		if err := rows.Scan(&queryKey, &dependency); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		result[queryKey] = append(result[queryKey], dependency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return result, nil
}

// WriteMetadata implements storage.Adapter.
func (s *Store) WriteMetadata(ctx context.Context, metadata map[string][]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies`); err != nil {
			return fmt.Errorf("clear dependencies: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO dependencies (query_key, dependency) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare dependency insert: %w", err)
		}
		defer stmt.Close()

		for queryKey, dependencies := range metadata {
			for _, dependency := range dependencies {
				if _, err := stmt.ExecContext(ctx, queryKey, dependency); err != nil {
					return fmt.Errorf("write dependency of %s: %w", queryKey, err)
				}
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
