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

// Package predindex maintains the predicate_index relation: one row per
// distinct edge predicate with the number of edges carrying it.
package predindex

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/kgraph/pkg/storage"
)

// Entry is one row of predicate_index.
type Entry struct {
	Predicate string `json:"predicate"`
	EdgeCount int64  `json:"edge_count"`
}

// Result summarizes a rebuild.
type Result struct {
	// Predicates is the number of distinct predicates indexed.
	Predicates int

	// Edges is the sum of all edge counts, equal to the size of the edges relation.
	Edges int64

	Duration time.Duration
}

const (
	clearSQL   = `DELETE FROM predicate_index`
	rebuildSQL = `INSERT INTO predicate_index (predicate, edge_count)
		SELECT predicate, COUNT(*) FROM edges
		GROUP BY predicate
		ORDER BY COUNT(*) DESC, predicate`
	summarySQL = `SELECT COUNT(*), COALESCE(SUM(edge_count), 0) FROM predicate_index`
)

// Indexer rebuilds predicate_index from edges.
type Indexer struct {
	backend storage.Backend
	logger  *slog.Logger
}

// NewIndexer returns an Indexer over backend.
func NewIndexer(backend storage.Backend, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{backend: backend, logger: logger}
}

// Rebuild clears and recomputes predicate_index in one transaction.
func (ix *Indexer) Rebuild(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	err := ix.backend.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, clearSQL); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		if _, err := tx.ExecContext(ctx, rebuildSQL); err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
		if err := tx.QueryRowContext(ctx, summarySQL).Scan(&result.Predicates, &result.Edges); err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rebuild predicate index: %w", err)
	}

	result.Duration = time.Since(start)
	ix.logger.Info("predindex.rebuild.complete",
		"predicates", result.Predicates,
		"edges", result.Edges,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// Count returns the number of edges with predicate, or 0 if it is not indexed.
func Count(ctx context.Context, b storage.Backend, predicate string) (int64, error) {
	res, err := b.Query(ctx, `SELECT edge_count FROM predicate_index WHERE predicate = ?`, predicate)
	if err != nil {
		return 0, fmt.Errorf("predicate count %s: %w", predicate, err)
	}
	if len(res.Rows) == 0 {
		return 0, nil
	}
	n, ok := res.Rows[0][0].(int64)
	if !ok {
		return 0, fmt.Errorf("predicate count %s: unexpected value %T", predicate, res.Rows[0][0])
	}
	return n, nil
}

// List returns all entries by descending edge count, ties broken by predicate.
func List(ctx context.Context, b storage.Backend) ([]Entry, error) {
	var out []Entry
	err := b.Scan(ctx, `SELECT predicate, edge_count FROM predicate_index
		ORDER BY edge_count DESC, predicate`, nil, func(rows *sql.Rows) error {
		var e Entry
		if err := rows.Scan(&e.Predicate, &e.EdgeCount); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list predicate index: %w", err)
	}
	return out, nil
}
