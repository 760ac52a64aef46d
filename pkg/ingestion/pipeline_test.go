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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kgtest "github.com/kraklabs/kgraph/internal/testing"
	"github.com/kraklabs/kgraph/pkg/storage"
)

func TestPipeline_Run(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	dir := t.TempDir()
	nodes := kgtest.WriteNodesFile(t, dir, []string{"X1"}, []string{"X2"}, []string{"X3"})
	edges := kgtest.WriteEdgesFile(t, dir,
		[]string{"e1", "X1", "subclass_of", "X2"},
		[]string{"e2", "X2", "subclass_of", "X3"},
	)

	p, err := NewPipeline(backend, Config{HierarchyPredicate: "subclass_of"}, quietLogger())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), Sources{NodesPath: nodes, EdgesPath: edges})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, int64(3), res.Nodes.TableRows)
	assert.Equal(t, int64(2), res.Edges.TableRows)
	assert.Equal(t, int64(3), res.Hierarchy.Entries)
	assert.Equal(t, 1, res.Predicates.Predicates)

	assert.Equal(t, int64(3), kgtest.CountRows(t, backend, storage.TableNodes))
	assert.Equal(t, int64(2), kgtest.CountRows(t, backend, storage.TableEdges))

	lengths := kgtest.QueryRows(t, backend,
		"SELECT path_length, COUNT(*) FROM hierarchy GROUP BY path_length ORDER BY path_length")
	assert.Equal(t, [][]any{{int64(1), int64(2)}, {int64(2), int64(1)}}, lengths)

	long := kgtest.QueryRows(t, backend,
		"SELECT ancestor_id, descendant_id, path FROM hierarchy WHERE path_length = 2")
	assert.Equal(t, [][]any{{"X3", "X1", "X3|X2|X1"}}, long)

	index := kgtest.QueryRows(t, backend, "SELECT predicate, edge_count FROM predicate_index")
	assert.Equal(t, [][]any{{"subclass_of", int64(2)}}, index)
}

func TestPipeline_RunTwiceIsStable(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	dir := t.TempDir()
	edges := kgtest.WriteEdgesFile(t, dir,
		[]string{"e1", "A", "subclass_of", "B"},
		[]string{"e2", "B", "subclass_of", "C"},
		[]string{"e3", "A", "treats", "D"},
	)

	p, err := NewPipeline(backend, Config{HierarchyPredicate: "subclass_of"}, quietLogger())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := p.Run(context.Background(), Sources{EdgesPath: edges})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), kgtest.CountRows(t, backend, storage.TableEdges))
	assert.Equal(t, int64(3), kgtest.CountRows(t, backend, storage.TableHierarchy))
	assert.Equal(t, int64(2), kgtest.CountRows(t, backend, storage.TablePredicateIndex))
}

func TestPipeline_MissingSourcesStillDerive(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "A", DefaultHierarchyPredicate, "B")

	p, err := NewPipeline(backend, Config{}, quietLogger())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), Sources{
		NodesPath: filepath.Join(t.TempDir(), "nodes.tsv"),
	})
	require.NoError(t, err)
	assert.True(t, res.Nodes.Skipped)
	assert.Nil(t, res.Edges)
	assert.Equal(t, int64(1), res.Hierarchy.Entries)
}

func TestNewPipeline_InvalidConfig(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)

	_, err := NewPipeline(backend, Config{MaxHops: -1}, quietLogger())
	assert.ErrorContains(t, err, "max hops")
}

func TestGenerateRunID_Deterministic(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	src := Sources{NodesPath: "n.tsv", EdgesPath: "e.tsv"}

	a := generateRunID(now, src)
	b := generateRunID(now.Add(200*time.Millisecond), src)
	c := generateRunID(now, Sources{NodesPath: "other.tsv"})

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
