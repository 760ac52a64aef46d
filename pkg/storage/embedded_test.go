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
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStorage creates an on-disk EmbeddedBackend in a temp dir.
func setupTestStorage(t *testing.T) *EmbeddedBackend {
	t.Helper()
	backend, err := NewEmbeddedBackend(EmbeddedConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestBackendInterface(t *testing.T) {
	var _ Backend = &EmbeddedBackend{}
}

func TestNewEmbeddedBackend_CreatesSchema(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	for _, table := range Tables {
		n, err := backend.TableCount(ctx, table)
		require.NoError(t, err, table)
		assert.Equal(t, int64(0), n, table)
	}
	assert.Equal(t, DefaultFileName, filepath.Base(backend.Path()))
}

func TestEmbeddedConfig_ResolvePath(t *testing.T) {
	tests := []struct {
		name   string
		config EmbeddedConfig
		want   string
	}{
		{"explicit path wins", EmbeddedConfig{Path: "/x/y.db", DataDir: "/ignored"}, "/x/y.db"},
		{"data dir", EmbeddedConfig{DataDir: "/data"}, filepath.Join("/data", DefaultFileName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.ResolvePath()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := EmbeddedConfig{ProjectID: "kg-microbe"}.ResolvePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("kg-microbe", DefaultFileName), filepath.Join(filepath.Base(filepath.Dir(got)), filepath.Base(got)))
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, backend.EnsureSchema(ctx))
	require.NoError(t, backend.EnsureSchema(ctx))
}

func TestQuery_ConvertsValues(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, backend.Execute(ctx,
		`INSERT INTO edges (id, subject, predicate, object) VALUES (?, ?, ?, ?)`,
		"e1", "A", "biolink:subclass_of", "B"))

	res, err := backend.Query(ctx, `SELECT id, subject, relation FROM edges`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "subject", "relation"}, res.Headers)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "e1", res.Rows[0][0])
	assert.Equal(t, "A", res.Rows[0][1])
	assert.Nil(t, res.Rows[0][2])
	assert.Equal(t, []any{"A"}, res.Column("subject"))
	assert.Nil(t, res.Column("missing"))
}

func TestScan_StreamsRows(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, backend.Execute(ctx, `INSERT INTO nodes (id) VALUES (?)`, id))
	}

	var ids []string
	err := backend.Scan(ctx, `SELECT id FROM nodes ORDER BY id`, nil, func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2", "n3"}, ids)

	stop := errors.New("stop")
	err = backend.Scan(ctx, `SELECT id FROM nodes`, nil, func(*sql.Rows) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := backend.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO predicate_index VALUES ('p', 1)`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := backend.TableCount(ctx, TablePredicateIndex)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = backend.WithTx(ctx, func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO predicate_index VALUES ('p', 1)`)
			panic("mid-rebuild")
		})
	})

	n, err := backend.TableCount(ctx, TablePredicateIndex)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestWithTx_Commits(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	err := backend.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO predicate_index VALUES ('p', 3)`)
		return err
	})
	require.NoError(t, err)

	n, err := backend.TableCount(ctx, TablePredicateIndex)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTableCount_UnknownTable(t *testing.T) {
	backend := setupTestStorage(t)
	_, err := backend.TableCount(context.Background(), "sqlite_master; DROP TABLE nodes")
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	backend, err := NewEmbeddedBackend(EmbeddedConfig{DataDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	require.NoError(t, backend.Close())

	ctx := context.Background()
	_, err = backend.Query(ctx, `SELECT 1`)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, backend.Execute(ctx, `SELECT 1`), ErrClosed)
	assert.ErrorIs(t, backend.WithTx(ctx, func(*sql.Tx) error { return nil }), ErrClosed)
}

func TestReadOnly_MissingFile(t *testing.T) {
	_, err := NewEmbeddedBackend(EmbeddedConfig{
		Path:     filepath.Join(t.TempDir(), "absent.db"),
		ReadOnly: true,
	})
	assert.Error(t, err)
}

func TestReadOnly_ReadsExistingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kg.db")
	writer, err := NewEmbeddedBackend(EmbeddedConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, writer.Execute(context.Background(), `INSERT INTO nodes (id) VALUES ('X1')`))
	require.NoError(t, writer.Close())

	reader, err := NewEmbeddedBackend(EmbeddedConfig{Path: path, ReadOnly: true})
	require.NoError(t, err)
	defer reader.Close()

	n, err := reader.TableCount(context.Background(), TableNodes)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Error(t, reader.EnsureSchema(context.Background()))
}
