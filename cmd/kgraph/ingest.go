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

package main

import (
	"context"
	"errors"
	"os"

	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/ui"
	"github.com/kraklabs/kgraph/pkg/hierarchy"
	"github.com/kraklabs/kgraph/pkg/ingestion"
	"github.com/kraklabs/kgraph/pkg/predindex"
)

// ingestError turns a pipeline failure into a UserError with an exit code.
func ingestError(err error) error {
	var ue *kgerrors.UserError
	switch {
	case errors.As(err, &ue):
		return err
	case errors.Is(err, context.Canceled):
		return kgerrors.NewInternalError("Interrupted", "The operation was cancelled before it finished",
			"Run the command again; completed chunks are kept", err)
	case errors.Is(err, ingestion.ErrMissingColumn), errors.Is(err, ingestion.ErrEmptyFile):
		return kgerrors.NewInputError("Invalid source file", err.Error(),
			"Check the header row of the TSV file")
	case errors.Is(err, os.ErrPermission):
		return kgerrors.NewPermissionError("Cannot read source file", err.Error(),
			"Check the file permissions", err)
	default:
		return kgerrors.NewDatabaseError("Ingestion failed", err.Error(),
			"Check the store file and free disk space", err)
	}
}

// LoadSummary is the JSON form of one file load.
type LoadSummary struct {
	Path          string `json:"path"`
	Table         string `json:"table"`
	Skipped       bool   `json:"skipped"`
	RowsRead      int    `json:"rows_read"`
	RowsInserted  int64  `json:"rows_inserted"`
	RowsRejected  int    `json:"rows_rejected"`
	ChunksApplied int    `json:"chunks_applied"`
	ChunksSkipped int    `json:"chunks_skipped"`
	TableRows     int64  `json:"table_rows"`
	DurationMS    int64  `json:"duration_ms"`
}

func summarizeLoad(r *ingestion.LoadResult) *LoadSummary {
	if r == nil {
		return nil
	}
	return &LoadSummary{
		Path:          r.Path,
		Table:         r.Table,
		Skipped:       r.Skipped,
		RowsRead:      r.RowsRead,
		RowsInserted:  r.RowsInserted,
		RowsRejected:  r.RowsRejected,
		ChunksApplied: r.ChunksApplied,
		ChunksSkipped: r.ChunksSkipped,
		TableRows:     r.TableRows,
		DurationMS:    r.Duration.Milliseconds(),
	}
}

// DeriveSummary is the JSON form of hierarchy and index rebuilds.
type DeriveSummary struct {
	Predicate        string  `json:"predicate"`
	MaxHops          int     `json:"max_hops"`
	HierarchyEntries int64   `json:"hierarchy_entries"`
	Layers           []int64 `json:"layers"`
	Truncated        bool    `json:"truncated"`
	Predicates       int     `json:"predicates,omitempty"`
	IndexedEdges     int64   `json:"indexed_edges,omitempty"`
	DurationMS       int64   `json:"duration_ms"`
}

func summarizeDerive(h *hierarchy.Result, p *predindex.Result) *DeriveSummary {
	if h == nil {
		return nil
	}
	s := &DeriveSummary{
		Predicate:        h.Predicate,
		MaxHops:          h.MaxHops,
		HierarchyEntries: h.Entries,
		Layers:           h.Layers,
		Truncated:        h.Truncated,
		DurationMS:       h.Duration.Milliseconds(),
	}
	if p != nil {
		s.Predicates = p.Predicates
		s.IndexedEdges = p.Edges
		s.DurationMS += p.Duration.Milliseconds()
	}
	return s
}

func printLoad(p *ui.Printer, r *ingestion.LoadResult) {
	if r == nil {
		return
	}
	if r.Skipped {
		p.Warningf("%s not found, %s left unchanged", r.Path, r.Table)
		return
	}
	p.Successf("Loaded %s into %s: %s new rows, %s total",
		ui.DimText(r.Path), r.Table, ui.CountText(r.RowsInserted), ui.CountText(r.TableRows))
	if r.ChunksSkipped > 0 {
		p.Warningf("%d chunk(s) with %d rows skipped because of malformed rows (see log)",
			r.ChunksSkipped, r.RowsRejected)
	}
}

func printDerive(p *ui.Printer, h *hierarchy.Result, ix *predindex.Result) {
	if h != nil {
		p.Successf("Hierarchy: %s entries for %s within %d hops",
			ui.CountText(h.Entries), h.Predicate, h.MaxHops)
		if h.Truncated {
			p.Warningf("Hierarchy truncated at %d hops; longer paths exist", h.MaxHops)
		}
	}
	if ix != nil {
		p.Successf("Predicate index: %d predicates over %s edges",
			ix.Predicates, ui.CountText(ix.Edges))
	}
}
