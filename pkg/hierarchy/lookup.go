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
	"strings"

	"github.com/kraklabs/kgraph/pkg/storage"
)

// Relative is an ancestor or descendant with its shortest stored distance.
type Relative struct {
	ID       string
	Distance int
}

// Path is one materialized path, ancestor first.
type Path struct {
	Length int
	Nodes  []string
}

// Ancestors returns every materialized ancestor of id, nearest first.
func Ancestors(ctx context.Context, b storage.Backend, id string) ([]Relative, error) {
	return relatives(ctx, b, `SELECT ancestor_id, MIN(path_length) FROM hierarchy
		WHERE descendant_id = ? AND ancestor_id <> descendant_id
		GROUP BY ancestor_id
		ORDER BY 2, 1`, id)
}

// Descendants returns every materialized descendant of id, nearest first.
func Descendants(ctx context.Context, b storage.Backend, id string) ([]Relative, error) {
	return relatives(ctx, b, `SELECT descendant_id, MIN(path_length) FROM hierarchy
		WHERE ancestor_id = ? AND ancestor_id <> descendant_id
		GROUP BY descendant_id
		ORDER BY 2, 1`, id)
}

func relatives(ctx context.Context, b storage.Backend, query, id string) ([]Relative, error) {
	var out []Relative
	err := b.Scan(ctx, query, []any{id}, func(rows *sql.Rows) error {
		var r Relative
		if err := rows.Scan(&r.ID, &r.Distance); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hierarchy lookup %s: %w", id, err)
	}
	return out, nil
}

// Paths returns all stored paths from ancestor down to descendant, shortest first.
// Splitting on PathSeparator is exact because ingestion rejects ids containing it.
func Paths(ctx context.Context, b storage.Backend, ancestor, descendant string) ([]Path, error) {
	var out []Path
	err := b.Scan(ctx, `SELECT path_length, path FROM hierarchy
		WHERE ancestor_id = ? AND descendant_id = ?
		ORDER BY path_length, path`, []any{ancestor, descendant}, func(rows *sql.Rows) error {
		var (
			p   Path
			raw string
		)
		if err := rows.Scan(&p.Length, &raw); err != nil {
			return err
		}
		p.Nodes = strings.Split(raw, PathSeparator)
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hierarchy paths %s -> %s: %w", ancestor, descendant, err)
	}
	return out, nil
}
