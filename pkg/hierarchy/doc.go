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

// Package hierarchy materializes the bounded transitive closure of is-a edges.
//
// An edge "A subclass_of B" is read as "A is-a B": the object B is the ancestor
// and the subject A the descendant. Materialize rebuilds the hierarchy relation
// from the current edges so ancestor and descendant lookups are plain indexed
// reads instead of graph traversals.
//
// The closure is computed as a layered fixed point inside the store: layer 1
// holds every hierarchy edge, layer k+1 extends each entry of layer k by one
// edge below its descendant. Iteration stops when a layer adds nothing or k
// reaches MaxHops, so cycles in the input cannot make it diverge. Paths longer
// than MaxHops are not materialized.
//
// Distinct paths between the same pair are all kept, one row each, with the
// full node sequence in path. Readers pick their own policy; Ancestors and
// Descendants report the shortest distance.
package hierarchy
