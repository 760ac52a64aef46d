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

package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{"with underlying error", &UserError{Message: "Cannot open store", Err: fmt.Errorf("file locked")}, "Cannot open store: file locked"},
		{"without underlying error", &UserError{Message: "Invalid input"}, "Invalid input"},
		{"empty message with underlying error", &UserError{Err: fmt.Errorf("some error")}, ": some error"},
		{"empty", &UserError{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	sentinel := stderrors.New("engine unavailable")
	err := NewDependencyError("Graph engine unavailable", "", "", fmt.Errorf("open: %w", sentinel))

	assert.ErrorIs(t, err, sentinel)
	assert.Nil(t, (&UserError{}).Unwrap())
}

func TestConstructors_ExitCodes(t *testing.T) {
	inner := stderrors.New("inner")
	tests := []struct {
		name string
		err  *UserError
		code int
	}{
		{"config", NewConfigError("m", "c", "f", inner), ExitConfig},
		{"database", NewDatabaseError("m", "c", "f", inner), ExitDatabase},
		{"network", NewNetworkError("m", "c", "f", inner), ExitNetwork},
		{"input", NewInputError("m", "c", "f"), ExitInput},
		{"permission", NewPermissionError("m", "c", "f", inner), ExitPermission},
		{"not found", NewNotFoundError("m", "c", "f", inner), ExitNotFound},
		{"dependency", NewDependencyError("m", "c", "f", inner), ExitDependency},
		{"internal", NewInternalError("m", "c", "f", inner), ExitInternal},
	}

	seen := map[int]string{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.ExitCode)
			assert.Equal(t, "m", tt.err.Message)
			assert.Equal(t, "c", tt.err.Cause)
			assert.Equal(t, "f", tt.err.Fix)
		})
		prev, dup := seen[tt.code]
		assert.False(t, dup, "%s reuses the exit code of %s", tt.name, prev)
		seen[tt.code] = tt.name
	}
	assert.Nil(t, NewInputError("m", "c", "f").Err)
}

func TestExitCodes_Values(t *testing.T) {
	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 6, ExitNotFound)
	assert.Equal(t, 7, ExitDependency)
	assert.Equal(t, 10, ExitInternal)
}

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCodeOf(nil))
	assert.Equal(t, ExitInternal, ExitCodeOf(stderrors.New("plain")))

	wrapped := fmt.Errorf("graph: %w", NewNotFoundError("Edges file not found", "", "", nil))
	assert.Equal(t, ExitNotFound, ExitCodeOf(wrapped))
}

func TestFormat(t *testing.T) {
	err := NewDatabaseError("Cannot open store", "locked", "wait", nil)
	out := err.Format(true)

	assert.Equal(t, "Error: Cannot open store\nCause: locked\nFix:   wait\n", out)

	bare := &UserError{Message: "boom"}
	assert.Equal(t, "Error: boom\n", bare.Format(true))
}

func TestFormat_RespectsNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	out := NewInputError("bad", "", "").Format(false)
	assert.NotContains(t, out, "\x1b[")
}

func TestToJSON(t *testing.T) {
	err := NewConfigError("Cannot load config", "bad yaml", "fix it", stderrors.New("line 3"))

	data, jerr := json.Marshal(err.ToJSON())
	require.NoError(t, jerr)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Cannot load config", got["error"])
	assert.Equal(t, "line 3", got["detail"])
	assert.EqualValues(t, ExitConfig, got["exit_code"])

	data, jerr = json.Marshal((&UserError{Message: "x", ExitCode: ExitInput}).ToJSON())
	require.NoError(t, jerr)
	assert.NotContains(t, string(data), "cause")
	assert.NotContains(t, string(data), "detail")
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer

	code := Report(&buf, NewNotFoundError("Nodes file not found", "", "", nil), false, true)
	assert.Equal(t, ExitNotFound, code)
	assert.True(t, strings.HasPrefix(buf.String(), "Error: Nodes file not found"))

	buf.Reset()
	code = Report(&buf, stderrors.New("unexpected"), true, true)
	assert.Equal(t, ExitInternal, code)

	var got ErrorJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "unexpected", got.Error)

	assert.Equal(t, ExitSuccess, Report(&buf, nil, false, true))
}
