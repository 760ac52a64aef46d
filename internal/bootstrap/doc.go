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

// Package bootstrap creates and opens the kgraph store for CLI commands.
//
// InitStore is idempotent: it creates the data directory and the schema
// when missing and reports the resulting relation counts.
//
//	info, err := bootstrap.InitStore(bootstrap.StoreConfig{Path: ".kgraph/kgraph.db"}, logger)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Store ready at %s\n", info.Path)
//
// OpenStore opens an existing store. Read-only opens are used by commands
// that never write, so they can run next to a loading process:
//
//	backend, err := bootstrap.OpenStore(bootstrap.StoreConfig{Path: path, ReadOnly: true}, logger)
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
//
// Both return *errors.UserError values with exit codes suited to the CLI.
package bootstrap
