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

package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	kgerrors "github.com/kraklabs/kgraph/internal/errors"
)

// Strategy names used in logs and metrics.
const (
	StrategyDirect   = "direct"
	StrategyFiltered = "filtered"
)

// GraphSource produces an AnalysisGraph.
type GraphSource interface {
	Strategy() string
	Build(ctx context.Context) (AnalysisGraph, error)
}

// FileGraphSource loads the canonical node and edge files directly.
type FileGraphSource struct {
	NodesPath string
	EdgesPath string

	// Engine is the registered engine name; empty selects DefaultEngine.
	Engine string

	// Roles defaults to DefaultRoles.
	Roles *ColumnRoles

	Logger *slog.Logger
}

// Strategy implements GraphSource.
func (s *FileGraphSource) Strategy() string { return StrategyDirect }

// Build checks both files and loads them into the engine. A missing or
// unreadable file fails the build.
func (s *FileGraphSource) Build(ctx context.Context) (AnalysisGraph, error) {
	engine, err := OpenEngine(s.Engine)
	if err != nil {
		recordBuild(StrategyDirect, s.Engine, "engine_unavailable")
		return nil, err
	}
	roles := DefaultRoles()
	if s.Roles != nil {
		roles = *s.Roles
	}
	return loadFiles(ctx, engine, StrategyDirect, EdgeListFiles{
		NodesPath: s.NodesPath,
		EdgesPath: s.EdgesPath,
		Roles:     roles,
	}, loggerOrDefault(s.Logger))
}

// loadFiles is the Direct step shared by both strategies.
func loadFiles(ctx context.Context, engine Engine, strategy string, files EdgeListFiles, logger *slog.Logger) (AnalysisGraph, error) {
	for _, f := range []struct{ kind, path string }{
		{"nodes", files.NodesPath},
		{"edges", files.EdgesPath},
	} {
		if err := checkReadable(f.kind, f.path); err != nil {
			recordBuild(strategy, engine.Name(), "source_missing")
			return nil, err
		}
	}

	start := time.Now()
	g, err := engine.Load(ctx, files)
	if err != nil {
		recordBuild(strategy, engine.Name(), "error")
		return nil, fmt.Errorf("%s engine: load %s and %s: %w", engine.Name(), files.NodesPath, files.EdgesPath, err)
	}
	elapsed := time.Since(start)
	recordBuild(strategy, engine.Name(), "ok")
	observeBuild(strategy, elapsed)

	logger.Info("analysis.graph.built",
		"strategy", strategy,
		"engine", engine.Name(),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return g, nil
}

func checkReadable(kind, path string) error {
	if path == "" {
		return kgerrors.NewInputError(
			fmt.Sprintf("No %s file given", kind),
			"The direct graph build needs both a nodes file and an edges file",
			fmt.Sprintf("Pass --%s or set sources.%s in .kgraph/project.yaml", kind, kind),
		)
	}
	f, err := os.Open(path)
	if err != nil {
		cause := fmt.Sprintf("%s cannot be read", path)
		if errors.Is(err, os.ErrNotExist) {
			cause = fmt.Sprintf("%s does not exist", path)
		}
		return kgerrors.NewNotFoundError(
			fmt.Sprintf("Graph %s file not available", kind),
			cause,
			"Check the path, or build from the store with --category/--predicate filters",
			fmt.Errorf("%w: %s: %w", ErrSourceMissing, path, err),
		)
	}
	return f.Close()
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
