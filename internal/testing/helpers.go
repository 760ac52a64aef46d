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

package testing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kraklabs/kgraph/pkg/storage"
)

// NodeHeader and EdgeHeader are the column sets written by WriteNodesFile and WriteEdgesFile.
var (
	NodeHeader = []string{"id", "category", "name", "description", "xref", "synonym", "iri", "provided_by", "deprecated", "subsets"}
	EdgeHeader = []string{"id", "subject", "predicate", "object", "relation", "knowledge_source", "primary_knowledge_source"}
)

// SetupTestBackend creates a file-backed store in a temporary directory.
// The backend is closed when the test finishes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    backend := kgtest.SetupTestBackend(t)
//	    kgtest.InsertTestEdge(t, backend, "e1", "A", "subclass_of", "B")
//	}
func SetupTestBackend(t *testing.T) *storage.EmbeddedBackend {
	t.Helper()

	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("failed to create test backend: %v", err)
	}

	t.Cleanup(func() {
		_ = backend.Close()
	})

	return backend
}

// WriteTSV writes a header and rows as a tab-separated file under dir and returns its path.
func WriteTSV(t *testing.T, dir, name string, header []string, rows ...[]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteNodesFile writes a nodes file with the full node header.
// Each row is padded with empty cells to the header width.
//
// Example:
//
//	path := kgtest.WriteNodesFile(t, dir, []string{"A", "biolink:Gene", "alpha"})
func WriteNodesFile(t *testing.T, dir string, rows ...[]string) string {
	t.Helper()
	return WriteTSV(t, dir, "nodes.tsv", NodeHeader, pad(rows, len(NodeHeader))...)
}

// WriteEdgesFile writes an edges file with the full edge header.
//
// Example:
//
//	path := kgtest.WriteEdgesFile(t, dir, []string{"e1", "A", "subclass_of", "B"})
func WriteEdgesFile(t *testing.T, dir string, rows ...[]string) string {
	t.Helper()
	return WriteTSV(t, dir, "edges.tsv", EdgeHeader, pad(rows, len(EdgeHeader))...)
}

func pad(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// InsertTestNode adds a node with an id and a category.
func InsertTestNode(t *testing.T, backend storage.Backend, id, category string) {
	t.Helper()

	err := backend.Execute(context.Background(),
		`INSERT INTO nodes (id, category) VALUES (?, ?)`, id, category)
	if err != nil {
		t.Fatalf("failed to insert test node: %v", err)
	}
}

// InsertTestEdge adds an edge subject -predicate-> object.
func InsertTestEdge(t *testing.T, backend storage.Backend, id, subject, predicate, object string) {
	t.Helper()

	err := backend.Execute(context.Background(),
		`INSERT INTO edges (id, subject, predicate, object) VALUES (?, ?, ?, ?)`,
		id, subject, predicate, object)
	if err != nil {
		t.Fatalf("failed to insert test edge: %v", err)
	}
}

// CountRows returns the row count of a relation.
func CountRows(t *testing.T, backend storage.Backend, table string) int64 {
	t.Helper()

	n, err := storage.CountRows(context.Background(), backend, table)
	if err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// QueryRows runs a query and returns its rows.
//
// Example:
//
//	rows := kgtest.QueryRows(t, backend, "SELECT id FROM nodes ORDER BY id")
//	require.Len(t, rows, 2)
func QueryRows(t *testing.T, backend storage.Backend, query string, args ...any) [][]any {
	t.Helper()

	result, err := backend.Query(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	return result.Rows
}
