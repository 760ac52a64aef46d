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

package hierarchy

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/kgraph/pkg/storage"
)

// PathSeparator joins node ids in the path column, ancestor first.
// Node ids never contain it; the loader rejects such rows.
const PathSeparator = "|"

// Config selects the hierarchy predicate and the hop bound.
type Config struct {
	// Predicate is the edge predicate treated as is-a.
	Predicate string

	// MaxHops is the longest path materialized.
	MaxHops int
}

// Validate reports an unusable configuration.
func (c Config) Validate() error {
	if c.Predicate == "" {
		return fmt.Errorf("hierarchy predicate must not be empty")
	}
	if c.MaxHops < 1 {
		return fmt.Errorf("max hops must be at least 1, got %d", c.MaxHops)
	}
	return nil
}

// Result summarizes one materialization run.
type Result struct {
	Predicate string
	MaxHops   int

	// Entries is the number of rows in the hierarchy relation after the run.
	Entries int64

	// Layers holds the number of entries per path length; Layers[0] is length 1.
	Layers []int64

	// Truncated is true when some path could have been extended past MaxHops.
	Truncated bool

	Duration time.Duration
}

const (
	clearSQL = `DELETE FROM hierarchy`

	baseLayerSQL = `INSERT OR IGNORE INTO hierarchy (ancestor_id, descendant_id, path_length, path)
		SELECT e.object, e.subject, 1, e.object || ? || e.subject
		FROM edges e
		WHERE e.predicate = ?`

	nextLayerSQL = `INSERT OR IGNORE INTO hierarchy (ancestor_id, descendant_id, path_length, path)
		SELECT h.ancestor_id, e.subject, h.path_length + 1, h.path || ? || e.subject
		FROM hierarchy h
		JOIN edges e ON e.object = h.descendant_id AND e.predicate = ?
		WHERE h.path_length = ?`

	extendableSQL = `SELECT EXISTS (
		SELECT 1 FROM hierarchy h
		JOIN edges e ON e.object = h.descendant_id AND e.predicate = ?
		WHERE h.path_length = ?)`
)

// Materializer rebuilds the hierarchy relation.
type Materializer struct {
	backend storage.Backend
	config  Config
	logger  *slog.Logger
}

// NewMaterializer validates config and returns a Materializer.
func NewMaterializer(backend storage.Backend, config Config, logger *slog.Logger) (*Materializer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{backend: backend, config: config, logger: logger}, nil
}

// Materialize clears and recomputes the hierarchy relation in one transaction.
// Readers see either the previous contents or the complete new closure.
func (m *Materializer) Materialize(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{Predicate: m.config.Predicate, MaxHops: m.config.MaxHops}

	m.logger.Info("hierarchy.materialize.start",
		"predicate", m.config.Predicate,
		"max_hops", m.config.MaxHops,
	)

	err := m.backend.WithTx(ctx, func(tx *sql.Tx) error {
		result.Layers = result.Layers[:0]
		result.Entries = 0
		result.Truncated = false

		if _, err := tx.ExecContext(ctx, clearSQL); err != nil {
			return fmt.Errorf("clear hierarchy: %w", err)
		}

		added, err := execCount(ctx, tx, baseLayerSQL, PathSeparator, m.config.Predicate)
		if err != nil {
			return fmt.Errorf("base layer: %w", err)
		}

		length := 1
		for added > 0 {
			result.Layers = append(result.Layers, added)
			result.Entries += added
			m.logger.Debug("hierarchy.layer.complete", "path_length", length, "entries", added)

			if length == m.config.MaxHops {
				var extendable bool
				if err := tx.QueryRowContext(ctx, extendableSQL, m.config.Predicate, length).Scan(&extendable); err != nil {
					return fmt.Errorf("check bound: %w", err)
				}
				result.Truncated = extendable
				break
			}

			added, err = execCount(ctx, tx, nextLayerSQL, PathSeparator, m.config.Predicate, length)
			if err != nil {
				return fmt.Errorf("layer %d: %w", length+1, err)
			}
			length++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("materialize hierarchy: %w", err)
	}

	result.Duration = time.Since(start)
	if result.Truncated {
		m.logger.Info("hierarchy.bound.reached",
			"max_hops", m.config.MaxHops,
			"note", "paths longer than max_hops are not materialized",
		)
	}
	m.logger.Info("hierarchy.materialize.complete",
		"predicate", m.config.Predicate,
		"entries", result.Entries,
		"layers", len(result.Layers),
		"truncated", result.Truncated,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func execCount(ctx context.Context, tx *sql.Tx, stmt string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
