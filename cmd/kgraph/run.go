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
	"time"

	"github.com/kraklabs/kgraph/internal/bootstrap"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/output"
	"github.com/kraklabs/kgraph/pkg/ingestion"
)

// RunOutput is the JSON output of 'kgraph run'.
type RunOutput struct {
	RunID   string         `json:"run_id"`
	Store   string         `json:"store"`
	Nodes   *LoadSummary   `json:"nodes,omitempty"`
	Edges   *LoadSummary   `json:"edges,omitempty"`
	Derived *DeriveSummary `json:"derived"`
	TotalMS int64          `json:"total_ms"`
}

// runPipeline loads the configured sources and rebuilds the derived relations.
func runPipeline(ctx context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "run", "[options]",
		"Loads the source files, then materializes the hierarchy and\nrebuilds the predicate index.")
	nodes := fs.String("nodes", "", "Nodes TSV file (default: sources.nodes)")
	edges := fs.String("edges", "", "Edges TSV file (default: sources.edges)")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus /metrics on this address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := e.config()
	if err != nil {
		return err
	}
	src := ingestion.Sources{NodesPath: cfg.Sources.Nodes, EdgesPath: cfg.Sources.Edges}
	if fs.Changed("nodes") || fs.Changed("edges") {
		src = ingestion.Sources{NodesPath: *nodes, EdgesPath: *edges}
	}

	if *metricsAddr != "" {
		stop, err := startMetricsServer(*metricsAddr, e.logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	backend, err := bootstrap.OpenOrCreateStore(cfg.StoreConfig(false), e.logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	p, err := ingestion.NewPipeline(backend, cfg.Ingestion(), e.logger)
	if err != nil {
		return kgerrors.NewConfigError("Invalid ingestion settings", err.Error(),
			"Correct the loader and hierarchy sections of project.yaml", err)
	}
	progress := newLoadProgress(NewProgressConfig(e.globals, e.stderr))
	p.Loader().OnProgress = progress.Hook

	res, err := p.Run(ctx, src)
	progress.Finish()
	if err != nil {
		return ingestError(err)
	}

	if e.globals.JSON {
		return output.JSONTo(e.stdout, RunOutput{
			RunID:   res.RunID,
			Store:   backend.Path(),
			Nodes:   summarizeLoad(res.Nodes),
			Edges:   summarizeLoad(res.Edges),
			Derived: summarizeDerive(res.Hierarchy, res.Predicates),
			TotalMS: res.TotalDuration.Milliseconds(),
		})
	}
	printLoad(e.printer, res.Nodes)
	printLoad(e.printer, res.Edges)
	printDerive(e.printer, res.Hierarchy, res.Predicates)
	e.printer.Infof("Run %s finished in %s", res.RunID, res.TotalDuration.Round(time.Millisecond))
	return nil
}
