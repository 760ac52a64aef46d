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

// Package ui prints colored status lines for the kgraph CLI.
//
// Colors follow the global color.NoColor switch set by InitColors, which
// main calls after parsing --no-color. fatih/color already honors NO_COLOR
// and disables itself when stdout is not a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors turns colored output off when noColor is set.
func InitColors(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Printer writes human-readable status lines. A quiet Printer drops
// everything except warnings.
type Printer struct {
	out   io.Writer
	quiet bool
}

// NewPrinter returns a Printer writing to out, or stdout when out is nil.
func NewPrinter(out io.Writer, quiet bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, quiet: quiet}
}

// Successf prints a green line with a check mark.
func (p *Printer) Successf(format string, args ...any) {
	if p.quiet {
		return
	}
	_, _ = Green.Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Warningf prints a yellow line. Warnings are shown even when quiet.
func (p *Printer) Warningf(format string, args ...any) {
	_, _ = Yellow.Fprintf(p.out, "⚠ "+format+"\n", args...)
}

// Infof prints a cyan informational line.
func (p *Printer) Infof(format string, args ...any) {
	if p.quiet {
		return
	}
	_, _ = Cyan.Fprintf(p.out, "ℹ "+format+"\n", args...)
}

// Header prints bold text underlined with '='.
//
//	Store Status
//	============
func (p *Printer) Header(text string) {
	if p.quiet {
		return
	}
	_, _ = Bold.Fprintln(p.out, text)
	fmt.Fprintln(p.out, strings.Repeat("=", len(text)))
}

// Field prints an indented "label value" pair with the label padded to width.
func (p *Printer) Field(width int, label string, value any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "  %s %v\n", Label(fmt.Sprintf("%-*s", width, label+":")), value)
}

// Label returns bold text for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns faint text, used for paths.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText returns a cyan count.
func CountText(count int64) string {
	return Cyan.Sprint(count)
}
