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

// Package analysis builds in-memory graphs for graph-algorithm engines.
//
// Two GraphSource strategies produce an AnalysisGraph:
//
//   - FileGraphSource hands the canonical node and edge files to the
//     engine unchanged. Use it to analyze the entire corpus.
//   - QueryFilteredGraphSource selects nodes by category and edges by
//     predicate from the store, exports the selection to private
//     temporary TSV files and then loads those files like FileGraphSource.
//     The temporary directory is removed on every return path.
//
// Engines register themselves by name, in the manner of database/sql drivers:
//
//	import _ "github.com/kraklabs/kgraph/pkg/analysis/gonumgraph"
//
//	src := &analysis.FileGraphSource{NodesPath: "nodes.tsv", EdgesPath: "edges.tsv"}
//	g, err := src.Build(ctx)
//
// Building against an engine that is not registered fails with a
// UserError wrapping ErrEngineUnavailable.
package analysis
