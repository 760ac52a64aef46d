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
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	kgtest "github.com/kraklabs/kgraph/internal/testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// setupProject writes a three-node chain and runs 'kgraph init'. It returns
// the project file path.
func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv("KGRAPH_DB", "")
	dir := t.TempDir()
	nodes := kgtest.WriteNodesFile(t, dir,
		[]string{"X1", "biolink:Gene", "root"},
		[]string{"X2", "biolink:Gene|biolink:Protein", "middle"},
		[]string{"X3", "biolink:Disease", "leaf"},
	)
	edges := kgtest.WriteEdgesFile(t, dir,
		[]string{"e1", "X2", "biolink:subclass_of", "X1"},
		[]string{"e2", "X3", "biolink:subclass_of", "X2"},
	)
	cfgPath := filepath.Join(dir, ".kgraph", "project.yaml")

	code, _, stderr := runCLI(t, "--no-color", "--config", cfgPath, "init",
		"--store", filepath.Join(dir, "kg.db"), "--nodes", nodes, "--edges", edges)
	require.Equal(t, kgerrors.ExitSuccess, code, stderr)
	return cfgPath
}

func TestRun_NoCommand(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, kgerrors.ExitInput, code)
	assert.Contains(t, stderr, "Commands:")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "frobnicate")
	assert.Equal(t, kgerrors.ExitInput, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, kgerrors.ExitSuccess, code)
	assert.Contains(t, stdout, "kgraph version dev")
}

func TestRun_CommandHelp(t *testing.T) {
	code, _, stderr := runCLI(t, "load", "--help")
	assert.Equal(t, kgerrors.ExitSuccess, code)
	assert.Contains(t, stderr, "Usage: kgraph load")
}

func TestInit_RefusesOverwrite(t *testing.T) {
	cfgPath := setupProject(t)

	code, _, stderr := runCLI(t, "--no-color", "--config", cfgPath, "init")
	assert.Equal(t, kgerrors.ExitInput, code)
	assert.Contains(t, stderr, "already initialized")

	code, _, _ = runCLI(t, "--config", cfgPath, "init", "--force", "--store", filepath.Join(filepath.Dir(cfgPath), "kg.db"))
	assert.Equal(t, kgerrors.ExitSuccess, code)
}

func TestPipeline_EndToEnd(t *testing.T) {
	cfgPath := setupProject(t)

	code, stdout, stderr := runCLI(t, "--json", "--config", cfgPath, "run")
	require.Equal(t, kgerrors.ExitSuccess, code, stderr)
	var runOut RunOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &runOut))
	assert.Len(t, runOut.RunID, 16)
	assert.Equal(t, int64(3), runOut.Nodes.TableRows)
	assert.Equal(t, int64(2), runOut.Edges.TableRows)
	require.NotNil(t, runOut.Derived)
	assert.Equal(t, int64(3), runOut.Derived.HierarchyEntries)
	assert.Equal(t, []int64{2, 1}, runOut.Derived.Layers)
	assert.False(t, runOut.Derived.Truncated)

	code, stdout, stderr = runCLI(t, "--json", "--config", cfgPath, "status")
	require.Equal(t, kgerrors.ExitSuccess, code, stderr)
	var status StatusResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, map[string]int64{"nodes": 3, "edges": 2, "hierarchy": 3, "predicate_index": 1}, status.Counts)
	require.Len(t, status.TopPredicates, 1)
	assert.Equal(t, "biolink:subclass_of", status.TopPredicates[0].Predicate)
	assert.Equal(t, int64(2), status.TopPredicates[0].EdgeCount)

	// A second run inserts nothing new.
	code, stdout, _ = runCLI(t, "--json", "--config", cfgPath, "run")
	require.Equal(t, kgerrors.ExitSuccess, code)
	require.NoError(t, json.Unmarshal([]byte(stdout), &runOut))
	assert.Zero(t, runOut.Nodes.RowsInserted)
	assert.Zero(t, runOut.Edges.RowsInserted)
	assert.Equal(t, int64(3), runOut.Derived.HierarchyEntries)
}

func TestStatus_HumanOutput(t *testing.T) {
	cfgPath := setupProject(t)
	code, _, _ := runCLI(t, "-q", "--config", cfgPath, "run")
	require.Equal(t, kgerrors.ExitSuccess, code)

	code, stdout, _ := runCLI(t, "--no-color", "--config", cfgPath, "status")
	require.Equal(t, kgerrors.ExitSuccess, code)
	assert.Contains(t, stdout, "Knowledge Graph Status")
	assert.Contains(t, stdout, "hierarchy:")
	assert.Contains(t, stdout, "biolink:subclass_of")
}

func TestStatus_StoreMissing(t *testing.T) {
	t.Setenv("KGRAPH_DB", filepath.Join(t.TempDir(), "absent.db"))
	cfgPath := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, SaveConfig(cfgPath, DefaultConfig()))

	code, _, stderr := runCLI(t, "--no-color", "--config", cfgPath, "status")
	assert.Equal(t, kgerrors.ExitNotFound, code)
	assert.Contains(t, stderr, "not found")
}

func TestLoadThenMaterialize(t *testing.T) {
	cfgPath := setupProject(t)

	code, stdout, stderr := runCLI(t, "--json", "--config", cfgPath, "load", "--edge-chunk", "1")
	require.Equal(t, kgerrors.ExitSuccess, code, stderr)
	var loadOut LoadOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &loadOut))
	assert.Equal(t, 2, loadOut.Edges.ChunksApplied)

	code, stdout, _ = runCLI(t, "--json", "--config", cfgPath, "status")
	require.Equal(t, kgerrors.ExitSuccess, code)
	var status StatusResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Zero(t, status.Counts["hierarchy"])

	code, stdout, stderr = runCLI(t, "--json", "--config", cfgPath, "materialize", "--max-hops", "1", "--skip-index")
	require.Equal(t, kgerrors.ExitSuccess, code, stderr)
	var derived DeriveSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &derived))
	assert.Equal(t, int64(2), derived.HierarchyEntries)
	assert.True(t, derived.Truncated)
	assert.Zero(t, derived.Predicates)

	code, _, _ = runCLI(t, "--config", cfgPath, "materialize", "--max-hops", "0")
	assert.Equal(t, kgerrors.ExitInput, code)
}

func TestLoad_MissingColumn(t *testing.T) {
	cfgPath := setupProject(t)
	bad := kgtest.WriteTSV(t, t.TempDir(), "edges.tsv", []string{"id", "subject", "object"}, []string{"e9", "A", "B"})

	code, _, stderr := runCLI(t, "--no-color", "--config", cfgPath, "load", "--edges", bad)
	assert.Equal(t, kgerrors.ExitInput, code)
	assert.Contains(t, stderr, "predicate")
}

func TestLoad_MetricsPortBusy(t *testing.T) {
	cfgPath := setupProject(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	code, _, _ := runCLI(t, "--config", cfgPath, "load", "--metrics-addr", ln.Addr().String())
	assert.Equal(t, kgerrors.ExitNetwork, code)
}

func TestQuery(t *testing.T) {
	cfgPath := setupProject(t)
	code, _, _ := runCLI(t, "-q", "--config", cfgPath, "run")
	require.Equal(t, kgerrors.ExitSuccess, code)

	code, stdout, stderr := runCLI(t, "--json", "--config", cfgPath, "query",
		"SELECT ancestor_id, path_length FROM hierarchy WHERE descendant_id = 'X3' ORDER BY path_length")
	require.Equal(t, kgerrors.ExitSuccess, code, stderr)
	var res QueryResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, []string{"ancestor_id", "path_length"}, res.Headers)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "X2", res.Rows[0][0])
	assert.Equal(t, "X1", res.Rows[1][0])

	code, stdout, _ = runCLI(t, "--no-color", "--config", cfgPath, "query", "SELECT id FROM nodes ORDER BY id")
	require.Equal(t, kgerrors.ExitSuccess, code)
	assert.Contains(t, stdout, "ID")
	assert.Contains(t, stdout, "(3 rows)")
}

func TestQuery_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no sql", args: nil, want: "No query given"},
		{name: "write", args: []string{"DELETE FROM nodes"}, want: "DELETE"},
		{name: "two statements", args: []string{"SELECT 1; SELECT 2"}, want: "one statement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--no-color", "query"}, tt.args...)
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, kgerrors.ExitInput, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestGraph(t *testing.T) {
	cfgPath := setupProject(t)
	code, _, _ := runCLI(t, "-q", "--config", cfgPath, "run")
	require.Equal(t, kgerrors.ExitSuccess, code)

	t.Run("direct", func(t *testing.T) {
		code, stdout, stderr := runCLI(t, "--json", "--config", cfgPath, "graph", "--direct")
		require.Equal(t, kgerrors.ExitSuccess, code, stderr)
		var res GraphResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, "direct", res.Strategy)
		assert.Equal(t, "gonum", res.Engine)
		assert.Equal(t, 3, res.Nodes)
		assert.Equal(t, 2, res.Edges)
		assert.Equal(t, []NodeDegree{{ID: "X2", OutDegree: 1}, {ID: "X3", OutDegree: 1}}, res.TopOut)
	})

	t.Run("filtered by category", func(t *testing.T) {
		tmp := t.TempDir()
		code, stdout, stderr := runCLI(t, "--json", "--config", cfgPath, "graph",
			"--category", "biolink:Gene", "--temp-dir", tmp)
		require.Equal(t, kgerrors.ExitSuccess, code, stderr)
		var res GraphResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, "filtered", res.Strategy)
		assert.Equal(t, 2, res.Nodes)
		assert.Equal(t, 1, res.Edges)
		assert.Equal(t, []NodeDegree{{ID: "X2", OutDegree: 1}}, res.TopOut)

		left, err := os.ReadDir(tmp)
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("direct with filters", func(t *testing.T) {
		code, _, _ := runCLI(t, "--config", cfgPath, "graph", "--direct", "--category", "biolink:Gene")
		assert.Equal(t, kgerrors.ExitInput, code)
	})

	t.Run("unknown engine", func(t *testing.T) {
		code, _, stderr := runCLI(t, "--no-color", "--config", cfgPath, "graph", "--engine", "networkx")
		assert.Equal(t, kgerrors.ExitDependency, code)
		assert.True(t, strings.Contains(stderr, "gonum"), stderr)
	})

	t.Run("direct file missing", func(t *testing.T) {
		code, _, _ := runCLI(t, "--config", cfgPath, "graph", "--direct",
			"--nodes", filepath.Join(t.TempDir(), "absent.tsv"))
		assert.Equal(t, kgerrors.ExitNotFound, code)
	})
}

func TestLineage(t *testing.T) {
	cfgPath := setupProject(t)
	code, _, _ := runCLI(t, "-q", "--config", cfgPath, "run")
	require.Equal(t, kgerrors.ExitSuccess, code)

	code, stdout, stderr := runCLI(t, "--json", "--config", cfgPath, "lineage", "X3", "--descendants", "--from", "X1")
	require.Equal(t, kgerrors.ExitSuccess, code, stderr)
	var res LineageResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, []RelativeOutput{{ID: "X2", Distance: 1}, {ID: "X1", Distance: 2}}, res.Ancestors)
	assert.Empty(t, res.Descendants)
	assert.Equal(t, []string{"X1 > X2 > X3"}, res.Paths)

	code, stdout, _ = runCLI(t, "--no-color", "--config", cfgPath, "lineage", "X1", "--descendants")
	require.Equal(t, kgerrors.ExitSuccess, code)
	assert.Contains(t, stdout, "No results")
	assert.Contains(t, stdout, "DESCENDANT")

	code, _, _ = runCLI(t, "--config", cfgPath, "lineage")
	assert.Equal(t, kgerrors.ExitInput, code)
}

func TestStatus_PredicateCount(t *testing.T) {
	cfgPath := setupProject(t)
	code, _, _ := runCLI(t, "-q", "--config", cfgPath, "run")
	require.Equal(t, kgerrors.ExitSuccess, code)

	code, stdout, _ := runCLI(t, "--json", "--config", cfgPath, "status",
		"--predicate", "biolink:subclass_of", "--predicate", "biolink:treats")
	require.Equal(t, kgerrors.ExitSuccess, code)
	var status StatusResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, map[string]int64{"biolink:subclass_of": 2, "biolink:treats": 0}, status.Predicates)
}
