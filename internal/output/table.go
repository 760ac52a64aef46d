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

package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// MaxCellWidth is where Table truncates long cell values.
const MaxCellWidth = 60

// Table writes rows as tab-aligned columns under upper-cased headers,
// followed by a row count.
func Table(w io.Writer, headers []string, rows [][]any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	upper := make([]string, len(headers))
	sep := make([]string, len(headers))
	for i, h := range headers {
		upper[i] = strings.ToUpper(h)
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(upper, "\t"))
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	cells := make([]string, len(headers))
	for _, row := range rows {
		cells = cells[:0]
		for _, v := range row {
			cells = append(cells, FormatCell(v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	noun := "rows"
	if len(rows) == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(w, "\n(%d %s)\n", len(rows), noun)
	return err
}

// FormatCell renders one value for a table cell.
func FormatCell(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return "<null>"
	case string:
		s = val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		s = fmt.Sprintf("%v", val)
	}
	// Tabs and newlines would break the column layout.
	s = strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
	if len(s) > MaxCellWidth {
		return s[:MaxCellWidth-3] + "..."
	}
	return s
}
