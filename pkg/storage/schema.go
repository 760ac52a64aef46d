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

// schemaStatements creates the knowledge-graph relations. Every statement is
// idempotent so EnsureSchema can run on each open.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS nodes (
		id               TEXT PRIMARY KEY,
		category         TEXT,
		name             TEXT,
		description      TEXT,
		cross_references TEXT,
		synonyms         TEXT,
		iri              TEXT,
		provided_by      TEXT,
		deprecated       INTEGER,
		subsets          TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		id                       TEXT PRIMARY KEY,
		subject                  TEXT NOT NULL,
		predicate                TEXT NOT NULL,
		object                   TEXT NOT NULL,
		relation                 TEXT,
		knowledge_source         TEXT,
		primary_knowledge_source TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_predicate ON edges(predicate)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_object_predicate ON edges(object, predicate)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_subject ON edges(subject)`,
	`CREATE TABLE IF NOT EXISTS hierarchy (
		ancestor_id   TEXT NOT NULL,
		descendant_id TEXT NOT NULL,
		path_length   INTEGER NOT NULL,
		path          TEXT NOT NULL,
		PRIMARY KEY (ancestor_id, descendant_id, path_length, path)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_hierarchy_ancestor ON hierarchy(ancestor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_hierarchy_descendant ON hierarchy(descendant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_hierarchy_length ON hierarchy(path_length)`,
	`CREATE TABLE IF NOT EXISTS predicate_index (
		predicate  TEXT PRIMARY KEY,
		edge_count INTEGER NOT NULL
	)`,
}
