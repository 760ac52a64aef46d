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

	"github.com/kraklabs/kgraph/internal/bootstrap"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/output"
	"github.com/kraklabs/kgraph/pkg/hierarchy"
	"github.com/kraklabs/kgraph/pkg/ingestion"
	"github.com/kraklabs/kgraph/pkg/predindex"
)

// runMaterialize rebuilds the hierarchy and, unless --skip-index is set,
// the predicate index from the edges already in the store.
//
// Examples:
//
//	kgraph materialize
//	kgraph materialize --predicate biolink:part_of --max-hops 4
func runMaterialize(ctx context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "materialize", "[options]",
		"Rebuilds the bounded transitive closure of the hierarchy predicate\nand the per-predicate edge counts.")
	predicate := fs.String("predicate", "", "Hierarchy predicate (default: hierarchy.predicate)")
	maxHops := fs.Int("max-hops", 0, "Longest path to materialize (default: hierarchy.max_hops)")
	skipIndex := fs.Bool("skip-index", false, "Do not rebuild the predicate index")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := e.config()
	if err != nil {
		return err
	}
	icfg := cfg.Ingestion()
	if *predicate != "" {
		icfg.HierarchyPredicate = *predicate
	}
	if fs.Changed("max-hops") {
		icfg.MaxHops = *maxHops
	}
	if err := icfg.Validate(); err != nil {
		return kgerrors.NewInputError("Invalid hierarchy options", err.Error(),
			"--max-hops must be at least 1 and --predicate non-empty")
	}

	backend, err := bootstrap.OpenStore(cfg.StoreConfig(false), e.logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	spinner := NewSpinner(NewProgressConfig(e.globals, e.stderr), "Materializing hierarchy")
	var (
		h  *hierarchy.Result
		ix *predindex.Result
	)
	if *skipIndex {
		m, err := hierarchy.NewMaterializer(backend,
			hierarchy.Config{Predicate: icfg.HierarchyPredicate, MaxHops: icfg.MaxHops}, e.logger)
		if err != nil {
			stopSpinner(spinner)
			return ingestError(err)
		}
		h, err = m.Materialize(ctx)
		stopSpinner(spinner)
		if err != nil {
			return ingestError(err)
		}
	} else {
		p, err := ingestion.NewPipeline(backend, icfg, e.logger)
		if err != nil {
			stopSpinner(spinner)
			return ingestError(err)
		}
		res, err := p.Derive(ctx)
		stopSpinner(spinner)
		if err != nil {
			return ingestError(err)
		}
		h, ix = res.Hierarchy, res.Predicates
	}

	if e.globals.JSON {
		return output.JSONTo(e.stdout, summarizeDerive(h, ix))
	}
	printDerive(e.printer, h, ix)
	return nil
}
