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
)

// ErrClosed is returned by every Backend method once Close has been called.
var ErrClosed = errors.New("backend is closed")

// Relation names of the knowledge-graph store.
const (
	TableNodes          = "nodes"
	TableEdges          = "edges"
	TableHierarchy      = "hierarchy"
	TablePredicateIndex = "predicate_index"
)

// Tables lists the four persistent relations in load order.
var Tables = []string{TableNodes, TableEdges, TableHierarchy, TablePredicateIndex}

// Backend is the interface that all storage backends must implement.
// It provides methods for executing queries and mutations on the knowledge graph.
type Backend interface {
	// Query executes a read-only SQL query and returns the materialized results.
	Query(ctx context.Context, query string, args ...any) (*QueryResult, error)

	// Scan executes a read-only SQL query and calls fn once per result row.
	// Rows are never buffered, so Scan is the way to walk large relations.
	Scan(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error

	// Execute runs a single SQL mutation outside an explicit transaction.
	Execute(ctx context.Context, stmt string, args ...any) error

	// WithTx runs fn inside one transaction. The transaction is committed when
	// fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error

	// Close releases any resources held by the backend.
	Close() error
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// QueryResult represents the result of a SQL query.
type QueryResult struct {
	Headers []string
	Rows    [][]any
}

// Column returns the values of the named column, or nil if the column is absent.
func (r *QueryResult) Column(name string) []any {
	idx := -1
	for i, h := range r.Headers {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out
}

// IsTable reports whether name is one of the four knowledge-graph relations.
func IsTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}
