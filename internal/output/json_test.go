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

package output

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONTo_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONTo(&buf, map[string]any{"nodes": 3}))

	assert.Equal(t, "{\n  \"nodes\": 3\n}\n", buf.String())
}

func TestJSONTo_Unencodable(t *testing.T) {
	var buf bytes.Buffer
	err := JSONTo(&buf, math.Inf(1))
	assert.ErrorContains(t, err, "JSON encoding failed")
}
