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

package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/kgraph/pkg/hierarchy"
	"github.com/kraklabs/kgraph/pkg/predindex"
	"github.com/kraklabs/kgraph/pkg/storage"
)

// Sources names the node and edge files of one run. Either may be empty.
type Sources struct {
	NodesPath string
	EdgesPath string
}

// RunResult summarizes a full pipeline run.
type RunResult struct {
	// RunID correlates the log lines of one run.
	RunID string

	// Nodes and Edges are nil when the corresponding path was empty.
	Nodes *LoadResult
	Edges *LoadResult

	Hierarchy  *hierarchy.Result
	Predicates *predindex.Result

	LoadDuration      time.Duration
	HierarchyDuration time.Duration
	IndexDuration     time.Duration
	TotalDuration     time.Duration
}

// Pipeline runs load, hierarchy materialization and predicate indexing in order.
type Pipeline struct {
	config       Config
	backend      storage.Backend
	logger       *slog.Logger
	loader       *Loader
	materializer *hierarchy.Materializer
	indexer      *predindex.Indexer
}

// NewPipeline validates config and wires the stages over backend.
func NewPipeline(backend storage.Backend, config Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	materializer, err := hierarchy.NewMaterializer(backend, hierarchy.Config{
		Predicate: config.HierarchyPredicate,
		MaxHops:   config.MaxHops,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create materializer: %w", err)
	}

	return &Pipeline{
		config:       config,
		backend:      backend,
		logger:       logger,
		loader:       NewLoader(backend, config, logger),
		materializer: materializer,
		indexer:      predindex.NewIndexer(backend, logger),
	}, nil
}

// Loader returns the batch loader so callers can attach a progress hook.
func (p *Pipeline) Loader() *Loader {
	return p.loader
}

// generateRunID generates a deterministic run ID for log correlation.
func generateRunID(startTime time.Time, src Sources) string {
	roundedTime := startTime.Truncate(time.Second)
	baseID := fmt.Sprintf("run-%s-%s-%d", src.NodesPath, src.EdgesPath, roundedTime.Unix())
	hash := sha256.Sum256([]byte(baseID))
	return hex.EncodeToString(hash[:8])
}

// Run loads src and rebuilds both derived relations.
func (p *Pipeline) Run(ctx context.Context, src Sources) (*RunResult, error) {
	startTime := time.Now()
	result := &RunResult{RunID: generateRunID(startTime, src)}
	p.logger.Info("ingestion.run.start", "run_id", result.RunID, "nodes", src.NodesPath, "edges", src.EdgesPath)

	// Step 1: Load source files
	loadStart := time.Now()
	if src.NodesPath != "" {
		res, err := p.loader.LoadNodes(ctx, src.NodesPath)
		if err != nil {
			return nil, fmt.Errorf("load nodes: %w", err)
		}
		result.Nodes = res
	}
	if src.EdgesPath != "" {
		res, err := p.loader.LoadEdges(ctx, src.EdgesPath)
		if err != nil {
			return nil, fmt.Errorf("load edges: %w", err)
		}
		result.Edges = res
	}
	result.LoadDuration = time.Since(loadStart)
	observeStage("load", result.LoadDuration)

	// Step 2: Materialize hierarchy
	derived, err := p.Derive(ctx)
	if err != nil {
		return nil, err
	}
	result.Hierarchy = derived.Hierarchy
	result.Predicates = derived.Predicates
	result.HierarchyDuration = derived.HierarchyDuration
	result.IndexDuration = derived.IndexDuration
	result.TotalDuration = time.Since(startTime)

	p.logger.Info("ingestion.run.complete",
		"run_id", result.RunID,
		"hierarchy_entries", result.Hierarchy.Entries,
		"predicates", result.Predicates.Predicates,
		"total_duration_ms", result.TotalDuration.Milliseconds(),
	)
	return result, nil
}

// Derive rebuilds the hierarchy and predicate index from the current edges
// without loading anything. Call it after any load.
func (p *Pipeline) Derive(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	hStart := time.Now()
	h, err := p.materializer.Materialize(ctx)
	if err != nil {
		return nil, err
	}
	result.Hierarchy = h
	result.HierarchyDuration = time.Since(hStart)
	observeStage("hierarchy", result.HierarchyDuration)
	setHierarchyEntries(h.Entries)

	// Step 3: Rebuild predicate index
	iStart := time.Now()
	idx, err := p.indexer.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	result.Predicates = idx
	result.IndexDuration = time.Since(iStart)
	observeStage("predicate_index", result.IndexDuration)
	setPredicateRows(idx.Predicates)

	return result, nil
}
