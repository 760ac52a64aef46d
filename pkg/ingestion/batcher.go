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

package ingestion

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kraklabs/kgraph/pkg/storage"
)

const insertNodeSQL = `INSERT OR IGNORE INTO nodes
	(id, category, name, description, cross_references, synonyms, iri, provided_by, deprecated, subsets)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertEdgeSQL = `INSERT OR IGNORE INTO edges
	(id, subject, predicate, object, relation, knowledge_source, primary_knowledge_source)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

func nodeArgs(n Node) []any {
	return []any{n.ID, n.Category, n.Name, n.Description, n.CrossReferences, n.Synonyms, n.IRI, n.ProvidedBy, n.Deprecated, n.Subsets}
}

func edgeArgs(e Edge) []any {
	return []any{e.ID, e.Subject, e.Predicate, e.Object, e.Relation, e.KnowledgeSource, e.PrimaryKnowledgeSource}
}

// Batcher writes parsed rows of one relation to the store, one transaction per batch.
type Batcher[T any] struct {
	backend storage.Backend
	stmt    string
	args    func(T) []any
}

// NewNodeBatcher returns a Batcher inserting into nodes.
func NewNodeBatcher(backend storage.Backend) *Batcher[Node] {
	return &Batcher[Node]{backend: backend, stmt: insertNodeSQL, args: nodeArgs}
}

// NewEdgeBatcher returns a Batcher inserting into edges.
func NewEdgeBatcher(backend storage.Backend) *Batcher[Edge] {
	return &Batcher[Edge]{backend: backend, stmt: insertEdgeSQL, args: edgeArgs}
}

// Insert writes rows with insert-or-ignore semantics on id and returns how many
// were new. Either every row of the batch is applied or none is.
func (b *Batcher[T]) Insert(ctx context.Context, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var inserted int64
	err := b.backend.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, b.stmt)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			res, err := stmt.ExecContext(ctx, b.args(row)...)
			if err != nil {
				return fmt.Errorf("insert row: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += n
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
