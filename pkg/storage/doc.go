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

// Package storage provides the embedded row store that holds the knowledge graph.
//
// The store is a single SQLite file (pure Go driver, no cgo) exposing four
// relations that downstream query agents read with plain SQL:
//
//	nodes            - typed graph entities, keyed by id
//	edges            - typed relations, keyed by id
//	hierarchy        - materialized is-a closure (ancestor, descendant, path_length, path)
//	predicate_index  - edge counts per predicate
//
// # Quick Start
//
//	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
//	    Path: "/data/kg/kgraph.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	res, err := backend.Query(ctx, `SELECT predicate, edge_count FROM predicate_index LIMIT 10`)
//
// # Transactions
//
// Derived relations are rebuilt with WithTx so a partially rebuilt table is
// never visible to readers:
//
//	err := backend.WithTx(ctx, func(tx *sql.Tx) error {
//	    if _, err := tx.ExecContext(ctx, `DELETE FROM predicate_index`); err != nil {
//	        return err
//	    }
//	    ...
//	})
//
// # Concurrency
//
// One process writes at a time. EmbeddedBackend serializes its own writers with
// a mutex; other processes can read concurrently by opening the same file with
// ReadOnly set, relying on SQLite's WAL mode.
package storage
