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
	"sort"
	"time"

	"github.com/kraklabs/kgraph/internal/bootstrap"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/output"
	"github.com/kraklabs/kgraph/internal/ui"
	"github.com/kraklabs/kgraph/pkg/predindex"
	"github.com/kraklabs/kgraph/pkg/storage"
)

// StatusResult represents the store status for JSON output.
type StatusResult struct {
	Store         string            `json:"store"`
	Counts        map[string]int64  `json:"counts"`
	TopPredicates []predindex.Entry `json:"top_predicates"`
	Predicates    map[string]int64  `json:"predicates,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// runStatus prints the row count of every relation and the most frequent
// predicates. The store is opened read-only, so status works while a load
// is running.
//
// Examples:
//
//	kgraph status
//	kgraph --json status --top 3
func runStatus(ctx context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "status", "[options]", "Shows relation counts and the most frequent predicates.")
	top := fs.Int("top", 5, "Number of predicates to list (0 for none)")
	lookups := fs.StringArray("predicate", nil, "Report the edge count of this predicate (repeatable)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := e.config()
	if err != nil {
		return err
	}
	backend, err := bootstrap.OpenStore(cfg.StoreConfig(true), e.logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	counts, err := bootstrap.Counts(ctx, backend)
	if err != nil {
		return err
	}
	entries, err := predindex.List(ctx, backend)
	if err != nil {
		return kgerrors.NewDatabaseError("Cannot read the predicate index", err.Error(),
			"Run 'kgraph materialize' to rebuild it", err)
	}
	if *top >= 0 && len(entries) > *top {
		entries = entries[:*top]
	}
	if entries == nil {
		entries = []predindex.Entry{}
	}

	var perPredicate map[string]int64
	for _, pred := range *lookups {
		n, err := predindex.Count(ctx, backend, pred)
		if err != nil {
			return kgerrors.NewDatabaseError("Cannot read the predicate index", err.Error(),
				"Run 'kgraph materialize' to rebuild it", err)
		}
		if perPredicate == nil {
			perPredicate = make(map[string]int64, len(*lookups))
		}
		perPredicate[pred] = n
	}

	result := StatusResult{
		Store:         backend.Path(),
		Counts:        counts,
		TopPredicates: entries,
		Predicates:    perPredicate,
		Timestamp:     time.Now(),
	}
	if e.globals.JSON {
		return output.JSONTo(e.stdout, result)
	}
	printStatus(e.printer, &result)
	return nil
}

func printStatus(p *ui.Printer, r *StatusResult) {
	p.Header("Knowledge Graph Status")
	p.Field(16, "Store", ui.DimText(r.Store))
	for _, table := range storage.Tables {
		p.Field(16, table, ui.CountText(r.Counts[table]))
	}
	for _, pred := range sortedKeys(r.Predicates) {
		p.Field(16, pred, ui.CountText(r.Predicates[pred]))
	}
	if len(r.TopPredicates) == 0 {
		return
	}
	p.Header("Top Predicates")
	width := 0
	for _, entry := range r.TopPredicates {
		width = max(width, len(entry.Predicate)+1)
	}
	for _, entry := range r.TopPredicates {
		p.Field(width, entry.Predicate, ui.CountText(entry.EdgeCount))
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
