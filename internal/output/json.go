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

// Package output writes command results for humans and for machines.
//
// Under --json every command writes exactly one JSON document to stdout:
//
//	if e.globals.JSON {
//	    return output.JSONTo(e.stdout, result)
//	}
//
// Tabular results, such as query rows, use Table for humans.
package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONTo writes data as indented JSON to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}
