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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kgtest "github.com/kraklabs/kgraph/internal/testing"
)

func TestAncestorsAndDescendants(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "X1", isA, "X2")
	kgtest.InsertTestEdge(t, backend, "e2", "X2", isA, "X3")
	kgtest.InsertTestEdge(t, backend, "e3", "X1", isA, "X3")
	materialize(t, backend, 10)

	ctx := context.Background()

	anc, err := Ancestors(ctx, backend, "X1")
	require.NoError(t, err)
	assert.Equal(t, []Relative{{ID: "X2", Distance: 1}, {ID: "X3", Distance: 1}}, anc)

	desc, err := Descendants(ctx, backend, "X3")
	require.NoError(t, err)
	assert.Equal(t, []Relative{{ID: "X1", Distance: 1}, {ID: "X2", Distance: 1}}, desc)

	none, err := Ancestors(ctx, backend, "X3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAncestors_ExcludesSelfInCycle(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)
	kgtest.InsertTestEdge(t, backend, "e1", "A", isA, "B")
	kgtest.InsertTestEdge(t, backend, "e2", "B", isA, "A")
	materialize(t, backend, 4)

	anc, err := Ancestors(context.Background(), backend, "A")
	require.NoError(t, err)
	assert.Equal(t, []Relative{{ID: "B", Distance: 1}}, anc)
}

func TestPaths_NoneStored(t *testing.T) {
	backend := kgtest.SetupTestBackend(t)

	paths, err := Paths(context.Background(), backend, "A", "B")
	require.NoError(t, err)
	assert.Empty(t, paths)
}
