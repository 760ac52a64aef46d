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

// Package contract validates user-supplied SQL before it reaches the store.
//
// kgraph query accepts a single read-only statement:
//
//	res := contract.ValidateReadOnlyQuery(sql)
//	if !res.OK {
//	    return errors.NewInputError("Query rejected", res.Message, "...")
//	}
//
// # Size Limit
//
// Queries longer than MaxQueryBytes are rejected. The limit defaults to
// 64 KiB (DefaultMaxQueryBytes) and can be changed with the
// KGRAPH_MAX_QUERY_BYTES environment variable:
//
//	export KGRAPH_MAX_QUERY_BYTES=1048576
package contract
