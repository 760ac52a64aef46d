// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// DefaultFileName is the store file created inside DataDir.
const DefaultFileName = "kgraph.db"

// EmbeddedBackend implements Backend using a local SQLite file.
type EmbeddedBackend struct {
	db       *sql.DB
	path     string
	readOnly bool
	mu       sync.RWMutex
	closed   bool
}

// EmbeddedConfig configures the embedded backend.
type EmbeddedConfig struct {
	// Path is the store file. When empty it is DataDir/kgraph.db.
	Path string

	// DataDir is the directory holding the store file.
	// Defaults to ~/.kgraph/data/<project_id>
	DataDir string

	// ProjectID is used to namespace the data directory.
	ProjectID string

	// ReadOnly opens the file without write access and skips schema creation.
	// Readers may run concurrently with a single ingesting writer.
	ReadOnly bool
}

// ResolvePath returns the store file path the config points at.
func (c EmbeddedConfig) ResolvePath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dataDir := c.DataDir
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".kgraph", "data")
		if c.ProjectID != "" {
			dataDir = filepath.Join(dataDir, c.ProjectID)
		}
	}
	return filepath.Join(dataDir, DefaultFileName), nil
}

// NewEmbeddedBackend opens (creating if needed) the store file and ensures the schema.
func NewEmbeddedBackend(config EmbeddedConfig) (*EmbeddedBackend, error) {
	path, err := config.ResolvePath()
	if err != nil {
		return nil, err
	}

	var dsn string
	if config.ReadOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("stat store: %w", err)
		}
		dsn = "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	b := &EmbeddedBackend{db: db, path: path, readOnly: config.ReadOnly}
	if !config.ReadOnly {
		if err := b.EnsureSchema(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return b, nil
}

// Path returns the store file path.
func (b *EmbeddedBackend) Path() string {
	return b.path
}

// Query executes a read-only SQL query.
func (b *EmbeddedBackend) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &QueryResult{Headers: headers}
	for rows.Next() {
		values := make([]any, len(headers))
		ptrs := make([]any, len(headers))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if raw, ok := v.([]byte); ok {
				values[i] = string(raw)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// Scan executes a read-only SQL query and streams its rows into fn.
func (b *EmbeddedBackend) Scan(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}

// Execute runs a SQL mutation.
func (b *EmbeddedBackend) Execute(ctx context.Context, stmt string, args ...any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	if _, err := b.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("execute failed: %w", err)
	}
	return nil
}

// WithTx runs fn inside a single transaction.
// A panic inside fn rolls the transaction back before propagating.
func (b *EmbeddedBackend) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TableCount returns the number of rows in one of the knowledge-graph relations.
func (b *EmbeddedBackend) TableCount(ctx context.Context, table string) (int64, error) {
	return CountRows(ctx, b, table)
}

// Close releases the database handle. It is safe to call more than once.
func (b *EmbeddedBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// EnsureSchema creates the knowledge-graph tables if they don't exist.
// This is idempotent and safe to call multiple times.
func (b *EmbeddedBackend) EnsureSchema(ctx context.Context) error {
	if b.readOnly {
		return fmt.Errorf("ensure schema: backend opened read-only")
	}
	for _, stmt := range schemaStatements {
		if err := b.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// CountRows returns the row count of a knowledge-graph relation through any Backend.
func CountRows(ctx context.Context, b Backend, table string) (int64, error) {
	if !IsTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	res, err := b.Query(ctx, "SELECT COUNT(*) FROM "+table)
	if err != nil {
		return 0, err
	}
	if len(res.Rows) != 1 {
		return 0, fmt.Errorf("count %s: unexpected result shape", table)
	}
	n, ok := res.Rows[0][0].(int64)
	if !ok {
		return 0, fmt.Errorf("count %s: unexpected value %T", table, res.Rows[0][0])
	}
	return n, nil
}
