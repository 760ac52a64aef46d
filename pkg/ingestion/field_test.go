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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_PresentAndMissing(t *testing.T) {
	p := Present("x")
	v, ok := p.Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.Equal(t, "x", p.OrElse("d"))
	assert.Equal(t, "x", p.String())

	m := Missing[string]()
	assert.False(t, m.IsPresent())
	assert.Equal(t, "d", m.OrElse("d"))
	assert.Equal(t, "<missing>", m.String())
}

func TestField_Value(t *testing.T) {
	v, err := Missing[bool]().Value()
	require.NoError(t, err)
	assert.Nil(t, v, "missing must be written as NULL")

	v, err = Present(true).Value()
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestNormalizer_Text(t *testing.T) {
	n := newNormalizer(DefaultNullValues)

	tests := []struct {
		raw     string
		want    string
		present bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"NA", "", false},
		{"N/A", "", false},
		{"NaN", "", false},
		{"null", "", false},
		{"None", "", false},
		{" None ", "", false},
		{"alpha", "alpha", true},
		{"  padded  ", "padded", true},
		{"NAN2", "NAN2", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := n.text(tt.raw).Get()
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizer_CustomNullValues(t *testing.T) {
	n := newNormalizer([]string{"-"})

	assert.False(t, n.text("-").IsPresent())
	assert.True(t, n.text("NA").IsPresent(), "only configured literals are null")
	assert.False(t, n.text("").IsPresent(), "empty is always missing")
}

func TestNormalizer_Boolean(t *testing.T) {
	n := newNormalizer(DefaultNullValues)

	for _, raw := range []string{"true", "True", "T", "yes", "1"} {
		f, err := n.boolean(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, Present(true), f, raw)
	}
	for _, raw := range []string{"false", "F", "no", "0"} {
		f, err := n.boolean(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, Present(false), f, raw)
	}

	f, err := n.boolean("NA")
	require.NoError(t, err)
	assert.False(t, f.IsPresent())

	_, err = n.boolean("maybe")
	assert.Error(t, err)
}
