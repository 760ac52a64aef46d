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

package hierarchy

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kgtest "github.com/kraklabs/kgraph/internal/testing"
	"github.com/kraklabs/kgraph/pkg/storage"
)

const isA = "subclass_of"

func materialize(t *testing.T, backend storage.Backend, maxHops int) *Result {
	t.Helper()
	m, err := NewMaterializer(backend, Config{Predicate: isA, MaxHops: maxHops},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	res, err := m.Materialize(context.Background())
	require.NoError(t, err)
	return res
}

func TestNewMaterializer_InvalidConfig(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)

	_, err := NewMaterializer(backend, Config{MaxHops: 3}, nil)
	assert.Error(t, err)

	_, err = NewMaterializer(backend, Config{Predicate: isA}, nil)
	assert.ErrorContains(t, err, "max hops")
}

func TestMaterialize_Chain(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "X1", isA, "X2")
	kgtest.InsertTestEdge(t, backend, "e2", "X2", isA, "X3")
	kgtest.InsertTestEdge(t, backend, "e3", "X1", "treats", "X9")

	res := materialize(t, backend, 10)
	assert.Equal(t, int64(3), res.Entries)
	assert.Equal(t, []int64{2, 1}, res.Layers)
	assert.False(t, res.Truncated)

	rows := kgtest.QueryRows(t, backend,
		"SELECT ancestor_id, descendant_id, path_length, path FROM hierarchy ORDER BY path_length, ancestor_id")
	assert.Equal(t, [][]any{
		{"X2", "X1", int64(1), "X2|X1"},
		{"X3", "X2", int64(1), "X3|X2"},
		{"X3", "X1", int64(2), "X3|X2|X1"},
	}, rows)
}

func TestMaterialize_CycleTerminates(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "A", isA, "B")
	kgtest.InsertTestEdge(t, backend, "e2", "B", isA, "A")

	res := materialize(t, backend, 3)
	assert.True(t, res.Truncated)
	assert.Equal(t, []int64{2, 2, 2}, res.Layers)
	assert.Equal(t, int64(6), res.Entries)

	rows := kgtest.QueryRows(t, backend, "SELECT MAX(path_length) FROM hierarchy")
	assert.Equal(t, int64(3), rows[0][0])
}

func TestMaterialize_SelfLoop(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "A", isA, "A")

	res := materialize(t, backend, 4)
	assert.True(t, res.Truncated)
	assert.Equal(t, int64(4), res.Entries)
}

func TestMaterialize_ExactBoundNotTruncated(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "A", isA, "B")
	kgtest.InsertTestEdge(t, backend, "e2", "B", isA, "C")

	res := materialize(t, backend, 2)
	assert.False(t, res.Truncated)
	assert.Equal(t, int64(3), res.Entries)

	res = materialize(t, backend, 1)
	assert.True(t, res.Truncated)
	assert.Equal(t, int64(2), res.Entries)
}

func TestMaterialize_PreservesDistinctPaths(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	// Diamond under A plus a shortcut D -> A.
	kgtest.InsertTestEdge(t, backend, "e1", "B", isA, "A")
	kgtest.InsertTestEdge(t, backend, "e2", "C", isA, "A")
	kgtest.InsertTestEdge(t, backend, "e3", "D", isA, "B")
	kgtest.InsertTestEdge(t, backend, "e4", "D", isA, "C")
	kgtest.InsertTestEdge(t, backend, "e5", "D", isA, "A")

	materialize(t, backend, 10)

	paths, err := Paths(context.Background(), backend, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, []Path{
		{Length: 1, Nodes: []string{"A", "D"}},
		{Length: 2, Nodes: []string{"A", "B", "D"}},
		{Length: 2, Nodes: []string{"A", "C", "D"}},
	}, paths)
}

func TestMaterialize_RebuildDropsStaleEntries(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "A", isA, "B")
	materialize(t, backend, 10)
	require.Equal(t, int64(1), kgtest.CountRows(t, backend, storage.TableHierarchy))

	require.NoError(t, backend.Execute(context.Background(), "DELETE FROM edges"))
	res := materialize(t, backend, 10)
	assert.Zero(t, res.Entries)
	assert.Empty(t, res.Layers)
	assert.Zero(t, kgtest.CountRows(t, backend, storage.TableHierarchy))
}

func TestMaterialize_RespectsCancellation(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "A", isA, "B")

	m, err := NewMaterializer(backend, Config{Predicate: isA, MaxHops: 2}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Materialize(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
