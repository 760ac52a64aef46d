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

// Package gonumgraph is the default graph engine. It loads edge-list files
// into a gonum multigraph and registers itself as "gonum" on import.
package gonumgraph

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kraklabs/kgraph/pkg/analysis"
)

// Name is the registry name of the engine.
const Name = "gonum"

func init() {
	analysis.Register(Name, Engine{})
}

// Engine implements analysis.Engine.
type Engine struct{}

// Name implements analysis.Engine.
func (Engine) Name() string { return Name }

// Load reads the node file and then the edge file. Nodes are deduplicated
// on id with the first row winning. Edges are deduplicated on the edge id
// column when the file has one.
func (Engine) Load(ctx context.Context, files analysis.EdgeListFiles) (analysis.AnalysisGraph, error) {
	g := newGraph()
	roles := files.Roles
	if roles == (analysis.ColumnRoles{}) {
		roles = analysis.DefaultRoles()
	}

	err := readTSV(ctx, files.NodesPath, func(cols columns, rec []string, line int) error {
		id := cols.get(rec, roles.NodeID)
		if id == "" {
			return fmt.Errorf("line %d: empty %s", line, roles.NodeID)
		}
		g.addNode(id, cols.get(rec, roles.NodeType))
		return nil
	}, roles.NodeID)
	if err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}

	seen := make(map[string]struct{})
	err = readTSV(ctx, files.EdgesPath, func(cols columns, rec []string, line int) error {
		src, dst, pred := cols.get(rec, roles.Source), cols.get(rec, roles.Destination), cols.get(rec, roles.EdgeType)
		if src == "" || dst == "" {
			return fmt.Errorf("line %d: edge endpoint missing", line)
		}
		if id := cols.get(rec, roles.EdgeID); id != "" {
			if _, dup := seen[id]; dup {
				return nil
			}
			seen[id] = struct{}{}
		}
		g.addEdge(src, dst, pred)
		return nil
	}, roles.Source, roles.Destination)
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}
	return g, nil
}

type columns map[string]int

func (c columns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// readTSV calls fn for every data row of a tab-separated file with a header.
// Each line is one record and quotes are data, as in KGX.
func readTSV(ctx context.Context, path string, fn func(columns, []string, int) error, required ...string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)
	line := 0
	readLine := func() (string, error) {
		for {
			raw, err := r.ReadString('\n')
			if raw == "" && err != nil {
				return "", err
			}
			line++
			if text := strings.TrimRight(raw, "\r\n"); text != "" {
				return text, nil
			}
			if err != nil {
				return "", err
			}
		}
	}

	text, err := readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: header row required", path)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	header := strings.Split(text, "\t")
	cols := make(columns, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%s: header is missing column %q", path, name)
		}
	}

	// Columns are located by name, so ragged rows are tolerated.
	for n := 0; ; n++ {
		if n%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		text, err := readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(cols, strings.Split(text, "\t"), line); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}
