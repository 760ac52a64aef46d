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
	"fmt"
	"time"

	"github.com/kraklabs/kgraph/internal/bootstrap"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/output"
	"github.com/kraklabs/kgraph/internal/ui"
	"github.com/kraklabs/kgraph/pkg/analysis"
	"github.com/kraklabs/kgraph/pkg/analysis/gonumgraph"
)

// GraphResult is the JSON output of 'kgraph graph'.
type GraphResult struct {
	Strategy   string       `json:"strategy"`
	Engine     string       `json:"engine"`
	Nodes      int          `json:"nodes"`
	Edges      int          `json:"edges"`
	TopOut     []NodeDegree `json:"top_out_degree,omitempty"`
	DurationMS int64        `json:"duration_ms"`
}

// NodeDegree is one node of the out-degree ranking.
type NodeDegree struct {
	ID        string `json:"id"`
	OutDegree int    `json:"out_degree"`
}

// runGraph builds an in-memory analysis graph and prints its size and the
// nodes with the most outgoing edges.
//
// With --direct the node and edge files are loaded as they are. Otherwise
// the graph is exported from the store, optionally restricted to node
// categories and edge predicates; both filters apply together.
//
// Examples:
//
//	kgraph graph --direct --nodes kg_nodes.tsv --edges kg_edges.tsv
//	kgraph graph --category biolink:Gene --predicate biolink:interacts_with
func runGraph(ctx context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "graph", "[options]",
		"Builds an analysis graph from the source files or from a filtered store export.")
	direct := fs.Bool("direct", false, "Load the node and edge files without the store")
	nodes := fs.String("nodes", "", "Nodes TSV file for --direct (default: sources.nodes)")
	edges := fs.String("edges", "", "Edges TSV file for --direct (default: sources.edges)")
	categories := fs.StringSlice("category", nil, "Keep nodes with this category tag (repeatable)")
	predicates := fs.StringSlice("predicate", nil, "Keep edges with this predicate (repeatable)")
	engine := fs.String("engine", "", "Graph engine (default: graph.engine)")
	tempDir := fs.String("temp-dir", "", "Parent directory for export files (default: graph.temp_dir)")
	top := fs.Int("top", 10, "Number of nodes in the out-degree ranking")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := e.config()
	if err != nil {
		return err
	}
	if *engine == "" {
		*engine = cfg.Graph.Engine
	}
	if *tempDir == "" {
		*tempDir = cfg.Graph.TempDir
	}

	var source analysis.GraphSource
	if *direct {
		if len(*categories) > 0 || len(*predicates) > 0 {
			return kgerrors.NewInputError("Filters need the store",
				"--category and --predicate cannot be combined with --direct",
				"Drop --direct to build the graph from a filtered store export")
		}
		n, ed := cfg.Sources.Nodes, cfg.Sources.Edges
		if *nodes != "" {
			n = *nodes
		}
		if *edges != "" {
			ed = *edges
		}
		source = &analysis.FileGraphSource{NodesPath: n, EdgesPath: ed, Engine: *engine, Logger: e.logger}
	} else {
		backend, err := bootstrap.OpenStore(cfg.StoreConfig(true), e.logger)
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()
		source = &analysis.QueryFilteredGraphSource{
			Backend:    backend,
			Categories: *categories,
			Predicates: *predicates,
			TempDir:    *tempDir,
			Engine:     *engine,
			Logger:     e.logger,
		}
	}

	spinner := NewSpinner(NewProgressConfig(e.globals, e.stderr), "Building graph")
	start := time.Now()
	g, err := source.Build(ctx)
	stopSpinner(spinner)
	if err != nil {
		return err
	}

	result := GraphResult{
		Strategy:   source.Strategy(),
		Engine:     g.Engine(),
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	// Degree ranking is only offered by the gonum engine.
	if gg, ok := g.(*gonumgraph.Graph); ok && *top > 0 {
		for _, d := range gg.TopOutDegree(*top) {
			result.TopOut = append(result.TopOut, NodeDegree{ID: d.ID, OutDegree: d.Out})
		}
	}

	if e.globals.JSON {
		return output.JSONTo(e.stdout, result)
	}
	e.printer.Successf("Built %s graph with %s (%s strategy)", result.Engine,
		fmt.Sprintf("%s nodes, %s edges", ui.CountText(int64(result.Nodes)), ui.CountText(int64(result.Edges))),
		result.Strategy)
	if len(result.TopOut) > 0 {
		rows := make([][]any, len(result.TopOut))
		for i, d := range result.TopOut {
			rows[i] = []any{d.ID, d.OutDegree}
		}
		return output.Table(e.stdout, []string{"node", "out_degree"}, rows)
	}
	return nil
}
