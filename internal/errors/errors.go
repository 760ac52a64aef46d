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

// Package errors provides user-facing errors for the kgraph CLI.
//
// A UserError carries three levels of information: what went wrong
// (Message), why (Cause) and what to do about it (Fix). Each constructor
// also assigns a semantic exit code, so commands can return a UserError
// and let main decide how to print it and how to exit.
//
//	err := errors.NewDatabaseError(
//	    "Cannot open the knowledge-graph store",
//	    "The store file is locked by another process",
//	    "Wait for the running 'kgraph load' to finish",
//	    underlyingErr,
//	)
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Error: Cannot open the knowledge-graph store
//	// Cause: The store file is locked by another process
//	// Fix:   Wait for the running 'kgraph load' to finish
//
// # Exit Codes
//
//   - ExitSuccess (0)
//   - ExitConfig (1): missing or invalid configuration
//   - ExitDatabase (2): store failures
//   - ExitNetwork (3): the metrics listener could not bind
//   - ExitInput (4): bad arguments or rejected queries
//   - ExitPermission (5): file access denied
//   - ExitNotFound (6): missing source files or store
//   - ExitDependency (7): a required graph engine is not available
//   - ExitInternal (10): bugs
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	ExitSuccess    = 0
	ExitConfig     = 1
	ExitDatabase   = 2
	ExitNetwork    = 3
	ExitInput      = 4
	ExitPermission = 5
	ExitNotFound   = 6

	// ExitDependency signals that an optional component, such as a graph
	// engine, is not compiled in or cannot be opened.
	ExitDependency = 7

	// ExitInternal signals a bug that should be reported.
	ExitInternal = 10
)

// UserError is an error with structured context for end users.
type UserError struct {
	// Message describes what went wrong.
	Message string

	// Cause explains why it happened.
	Cause string

	// Fix is an actionable suggestion.
	Fix string

	// ExitCode is used by the CLI when exiting because of this error.
	ExitCode int

	// Err is the wrapped error, if any.
	Err error
}

// Error returns the message, followed by the wrapped error when present.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: code,
		Err:      err,
	}
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load kgraph configuration",
//	    "The file .kgraph/project.yaml is not valid YAML",
//	    "Fix the syntax or run 'kgraph init --force'",
//	    err,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewDatabaseError creates a store error with exit code ExitDatabase.
func NewDatabaseError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitDatabase, msg, cause, fix, err)
}

// NewNetworkError creates a network error with exit code ExitNetwork.
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNetwork, msg, cause, fix, err)
}

// NewInputError creates an input validation error with exit code ExitInput.
// Input errors do not wrap an underlying error.
//
// Example:
//
//	return NewInputError(
//	    "Query rejected",
//	    "Only SELECT, WITH and EXPLAIN statements are allowed",
//	    "Use 'kgraph load' or 'kgraph materialize' to change the store",
//	)
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(ExitInput, msg, cause, fix, nil)
}

// NewPermissionError creates a permission error with exit code ExitPermission.
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitPermission, msg, cause, fix, err)
}

// NewNotFoundError creates a not-found error with exit code ExitNotFound.
func NewNotFoundError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, err)
}

// NewDependencyError creates an error with exit code ExitDependency for a
// component that is required by the operation but not available.
//
// Example:
//
//	return NewDependencyError(
//	    "Graph engine unavailable",
//	    `No engine named "igraph" is registered`,
//	    "Use --engine gonum or build with the engine's package imported",
//	    analysis.ErrEngineUnavailable,
//	)
func NewDependencyError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitDependency, msg, cause, fix, err)
}

// NewInternalError creates an internal error with exit code ExitInternal.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// ExitCodeOf returns the exit code carried by the first UserError in err's
// chain, ExitSuccess for nil, and ExitInternal otherwise.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue.ExitCode
	}
	return ExitInternal
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns the error for terminal display. Empty Cause and Fix lines
// are omitted. Colors are disabled by noColor or the NO_COLOR variable.
//
// Format changes the global color.NoColor state and restores it before returning.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON is the --json rendering of a UserError.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	Detail   string `json:"detail,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to its JSON form. Detail holds the wrapped
// error's message.
func (e *UserError) ToJSON() ErrorJSON {
	out := ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
	if e.Err != nil {
		out.Detail = e.Err.Error()
	}
	return out
}

// Report writes err to w the way the CLI shows it and returns the exit code.
// Errors that are not UserErrors are reported as internal errors.
func Report(w io.Writer, err error, jsonOutput, noColor bool) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *UserError
	if !stderrors.As(err, &ue) {
		ue = NewInternalError(err.Error(), "", "", nil)
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		// Encode errors are ignored; the caller is about to exit.
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(w, ue.Format(noColor))
	}
	return ue.ExitCode
}
