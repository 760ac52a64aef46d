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
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/pkg/storage"
)

// Export file names inside the private temporary directory.
const (
	exportNodesFile = "nodes.tsv"
	exportEdgesFile = "edges.tsv"
)

// QueryFilteredGraphSource builds a graph from a subset of the store.
// Empty filters do not restrict their dimension.
type QueryFilteredGraphSource struct {
	Backend storage.Backend

	// Categories keeps nodes carrying any of these category tags.
	Categories []string

	// Predicates keeps edges with any of these predicates. When Categories
	// is set, both endpoints of a kept edge must be kept nodes too.
	Predicates []string

	// TempDir is the parent of the export directory; empty uses os.TempDir.
	TempDir string

	Engine string
	Logger *slog.Logger
}

// Strategy implements GraphSource.
func (s *QueryFilteredGraphSource) Strategy() string { return StrategyFiltered }

// Build exports the selection to temporary files and loads them. The
// temporary directory is removed on every return path.
func (s *QueryFilteredGraphSource) Build(ctx context.Context) (AnalysisGraph, error) {
	logger := loggerOrDefault(s.Logger)

	engine, err := OpenEngine(s.Engine)
	if err != nil {
		recordBuild(StrategyFiltered, s.Engine, "engine_unavailable")
		return nil, err
	}

	dir, err := os.MkdirTemp(s.TempDir, "kgraph-graph-*")
	if err != nil {
		return nil, kgerrors.NewPermissionError(
			"Cannot create temporary export directory",
			fmt.Sprintf("Creating a directory under %q failed", s.tempParent()),
			"Set graph.temp_dir in .kgraph/project.yaml to a writable directory",
			err,
		)
	}
	defer removeExportDir(dir, logger)

	roles := DefaultRoles()
	files := EdgeListFiles{
		NodesPath: filepath.Join(dir, exportNodesFile),
		EdgesPath: filepath.Join(dir, exportEdgesFile),
		Roles:     roles,
	}

	nodeQuery, nodeArgs := s.nodeQuery()
	nodes, err := s.export(ctx, files.NodesPath, []string{roles.NodeID, roles.NodeType}, nodeQuery, nodeArgs)
	if err != nil {
		recordBuild(StrategyFiltered, engine.Name(), "query_failed")
		return nil, s.queryError("nodes", nodeQuery, err)
	}

	edgeQuery, edgeArgs := s.edgeQuery()
	edges, err := s.export(ctx, files.EdgesPath, []string{roles.EdgeID, roles.Source, roles.EdgeType, roles.Destination}, edgeQuery, edgeArgs)
	if err != nil {
		recordBuild(StrategyFiltered, engine.Name(), "query_failed")
		return nil, s.queryError("edges", edgeQuery, err)
	}

	logger.Debug("analysis.export.complete",
		"dir", dir,
		"nodes", nodes,
		"edges", edges,
		"categories", s.Categories,
		"predicates", s.Predicates,
	)

	return loadFiles(ctx, engine, StrategyFiltered, files, logger)
}

func (s *QueryFilteredGraphSource) tempParent() string {
	if s.TempDir == "" {
		return os.TempDir()
	}
	return s.TempDir
}

// categoryCondition matches any |-separated tag of nodes.category.
func categoryCondition(column string, categories []string) (string, []any) {
	conds := make([]string, len(categories))
	args := make([]any, len(categories))
	for i, c := range categories {
		conds[i] = fmt.Sprintf("instr('|' || %s || '|', '|' || ? || '|') > 0", column)
		args[i] = c
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *QueryFilteredGraphSource) nodeQuery() (string, []any) {
	query := `SELECT id, COALESCE(category, '') FROM nodes`
	if len(s.Categories) == 0 {
		return query + ` ORDER BY id`, nil
	}
	cond, args := categoryCondition("category", s.Categories)
	return query + ` WHERE ` + cond + ` ORDER BY id`, args
}

func (s *QueryFilteredGraphSource) edgeQuery() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if len(s.Predicates) > 0 {
		conds = append(conds, `predicate IN (`+placeholders(len(s.Predicates))+`)`)
		for _, p := range s.Predicates {
			args = append(args, p)
		}
	}
	if len(s.Categories) > 0 {
		cond, catArgs := categoryCondition("category", s.Categories)
		for _, endpoint := range []string{"subject", "object"} {
			conds = append(conds, endpoint+` IN (SELECT id FROM nodes WHERE `+cond+`)`)
			args = append(args, catArgs...)
		}
	}

	query := `SELECT id, subject, predicate, object FROM edges`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query + ` ORDER BY id`, args
}

// export streams the query result into a TSV file with the given header.
func (s *QueryFilteredGraphSource) export(ctx context.Context, path string, header []string, query string, args []any) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	// Cells are written verbatim: the reader treats each line as one record and quotes as data.
	w := bufio.NewWriter(f)
	writeRow := func(cells []string) error {
		_, err := w.WriteString(strings.Join(cells, "\t") + "\n")
		return err
	}
	if err := writeRow(header); err != nil {
		return 0, err
	}

	rows := 0
	record := make([]string, len(header))
	dest := make([]any, len(header))
	for i := range record {
		dest[i] = &record[i]
	}
	err = s.Backend.Scan(ctx, query, args, func(r *sql.Rows) error {
		if err := r.Scan(dest...); err != nil {
			return err
		}
		rows++
		return writeRow(record)
	})
	if err != nil {
		return 0, err
	}

	if err := w.Flush(); err != nil {
		return 0, err
	}
	return rows, f.Close()
}

func (s *QueryFilteredGraphSource) queryError(relation, query string, err error) error {
	return kgerrors.NewDatabaseError(
		fmt.Sprintf("Cannot export %s for the filtered graph", relation),
		fmt.Sprintf("Query %q failed (categories=%v predicates=%v)", query, s.Categories, s.Predicates),
		"Check that the store was loaded with 'kgraph load' and is not locked",
		err,
	)
}

// removeExportDir deletes the export directory. Failure is logged and counted only.
func removeExportDir(dir string, logger *slog.Logger) {
	if err := os.RemoveAll(dir); err != nil {
		recordCleanupFailure()
		logger.Warn("analysis.tempfiles.cleanup.failed", "dir", dir, "err", err)
	}
}
