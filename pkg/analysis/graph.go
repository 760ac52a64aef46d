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

package analysis

// AnalysisGraph is a fully constructed directed graph owned by an engine.
// Node identifiers are the string ids of the knowledge graph.
type AnalysisGraph interface {
	// Engine names the engine that built the graph.
	Engine() string

	NodeCount() int

	// EdgeCount counts parallel edges separately.
	EdgeCount() int

	HasNode(id string) bool

	// Category returns the node's category cell; false for unknown or untyped nodes.
	Category(id string) (string, bool)
}
