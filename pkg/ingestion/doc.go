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

// Package ingestion loads knowledge-graph node and edge files into the row store.
//
// Source files are tab-separated with a header row. The loader reads them in
// fixed-size chunks (50,000 node rows, 100,000 edge rows by default), so peak
// memory stays around one chunk no matter how large the file is. Each chunk is
// inserted in its own transaction with INSERT OR IGNORE keyed on id, which makes
// re-running a load against the same or an updated file a no-op for rows that
// already exist.
//
// # Pipeline Overview
//
//  1. Load nodes: nodes file → nodes relation
//  2. Load edges: edges file → edges relation
//  3. Materialize hierarchy: bounded is-a closure → hierarchy relation
//  4. Rebuild predicate index: edge counts → predicate_index relation
//
// # Quick Start
//
//	pipeline, err := ingestion.NewPipeline(backend, ingestion.DefaultConfig(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := pipeline.Run(ctx, ingestion.Sources{
//	    NodesPath: "merged-kg_nodes.tsv",
//	    EdgesPath: "merged-kg_edges.tsv",
//	})
//
// # Error Policy
//
// A missing source file is skipped with a warning. A malformed row aborts the
// chunk it belongs to; the chunk is logged with its index and the load moves on.
// Store failures stop the load and are returned to the caller.
//
// # Null Handling
//
// Values listed in Config.NullValues ("", "NA", "None", ...) become Missing at
// the parsing boundary. Field values are written to the store through
// driver.Valuer, so insertion code never looks at sentinel strings.
package ingestion
