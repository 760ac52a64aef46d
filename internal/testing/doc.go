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

// Package testing provides test helpers for kgraph package tests.
//
// # Quick Start
//
// Use SetupTestBackend to create a temporary store with the schema applied:
//
//	func TestMyFeature(t *testing.T) {
//	    backend := kgtest.SetupTestBackend(t)
//	    kgtest.InsertTestEdge(t, backend, "e1", "A", "subclass_of", "B")
//
//	    rows := kgtest.QueryRows(t, backend, "SELECT id FROM edges")
//	    require.Len(t, rows, 1)
//	}
//
// # Source Files
//
// WriteNodesFile and WriteEdgesFile write TSV fixtures with the standard
// headers. WriteTSV writes an arbitrary header, which is useful for
// exercising alias columns and malformed input.
//
// # Seeding the Store
//
//   - InsertTestNode: add a node row
//   - InsertTestEdge: add an edge row
//   - CountRows: count the rows of a relation
//   - QueryRows: run an arbitrary query
package testing
