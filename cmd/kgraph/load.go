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
	"github.com/kraklabs/kgraph/pkg/ingestion"
)

// LoadOutput is the JSON output of 'kgraph load'.
type LoadOutput struct {
	Store string       `json:"store"`
	Nodes *LoadSummary `json:"nodes,omitempty"`
	Edges *LoadSummary `json:"edges,omitempty"`
}

// runLoad loads node and edge files without touching the derived relations.
// Loading is idempotent: rows whose id is already stored are ignored.
//
// Flags:
//   - --nodes, --edges: Source files (default: sources in project.yaml)
//   - --node-chunk, --edge-chunk: Rows per transaction
//   - --metrics-addr: Serve Prometheus metrics while loading
//
// Examples:
//
//	kgraph load --nodes kg_nodes.tsv --edges kg_edges.tsv
//	kgraph load --edges more_edges.tsv --metrics-addr :9090
func runLoad(ctx context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "load", "[options]",
		"Loads node and edge TSV files into the store in chunks.")
	nodes := fs.String("nodes", "", "Nodes TSV file (default: sources.nodes)")
	edges := fs.String("edges", "", "Edges TSV file (default: sources.edges)")
	nodeChunk := fs.Int("node-chunk", 0, "Node rows per transaction (default: loader.node_chunk_size)")
	edgeChunk := fs.Int("edge-chunk", 0, "Edge rows per transaction (default: loader.edge_chunk_size)")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus /metrics on this address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := e.config()
	if err != nil {
		return err
	}
	src := ingestion.Sources{NodesPath: *nodes, EdgesPath: *edges}
	if !fs.Changed("nodes") && !fs.Changed("edges") {
		src = ingestion.Sources{NodesPath: cfg.Sources.Nodes, EdgesPath: cfg.Sources.Edges}
	}
	if src.NodesPath == "" && src.EdgesPath == "" {
		return kgerrors.NewInputError("Nothing to load",
			"No nodes or edges file was given",
			"Pass --nodes and/or --edges, or set sources in project.yaml")
	}

	icfg := cfg.Ingestion()
	if *nodeChunk != 0 {
		icfg.NodeChunkSize = *nodeChunk
	}
	if *edgeChunk != 0 {
		icfg.EdgeChunkSize = *edgeChunk
	}
	if err := icfg.Validate(); err != nil {
		return kgerrors.NewInputError("Invalid chunk size", err.Error(), "Chunk sizes must be positive")
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

	progress := newLoadProgress(NewProgressConfig(e.globals, e.stderr))
	loader := ingestion.NewLoader(backend, icfg, e.logger)
	loader.OnProgress = progress.Hook

	out := LoadOutput{Store: backend.Path()}
	if src.NodesPath != "" {
		r, err := loader.LoadNodes(ctx, src.NodesPath)
		progress.Finish()
		if err != nil {
			return ingestError(err)
		}
		out.Nodes = summarizeLoad(r)
		printLoad(e.printer, r)
	}
	if src.EdgesPath != "" {
		r, err := loader.LoadEdges(ctx, src.EdgesPath)
		progress.Finish()
		if err != nil {
			return ingestError(err)
		}
		out.Edges = summarizeLoad(r)
		printLoad(e.printer, r)
	}

	if e.globals.JSON {
		return output.JSONTo(e.stdout, out)
	}
	e.printer.Infof("Run 'kgraph materialize' to refresh the hierarchy and predicate index")
	return nil
}
