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
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	kgerrors "github.com/kraklabs/kgraph/internal/errors"
)

// DefaultEngine is used when no engine name is given.
const DefaultEngine = "gonum"

// defaultEngineImport is the package that registers DefaultEngine.
const defaultEngineImport = "github.com/kraklabs/kgraph/pkg/analysis/gonumgraph"

var (
	// ErrEngineUnavailable is wrapped by errors for engines that are not registered.
	ErrEngineUnavailable = errors.New("graph engine unavailable")

	// ErrSourceMissing is wrapped by errors for source files that cannot be read.
	ErrSourceMissing = errors.New("graph source file missing")
)

// ColumnRoles maps engine roles to header names in the edge-list files.
type ColumnRoles struct {
	NodeID   string
	NodeType string

	// EdgeID may name a column absent from the file; edges are then not deduplicated.
	EdgeID      string
	Source      string
	EdgeType    string
	Destination string
}

// DefaultRoles returns the roles of the canonical node and edge files.
func DefaultRoles() ColumnRoles {
	return ColumnRoles{
		NodeID:      "id",
		NodeType:    "category",
		EdgeID:      "id",
		Source:      "subject",
		EdgeType:    "predicate",
		Destination: "object",
	}
}

// EdgeListFiles is what an Engine ingests.
type EdgeListFiles struct {
	NodesPath string
	EdgesPath string
	Roles     ColumnRoles
}

// Engine loads edge-list files into a graph.
type Engine interface {
	Name() string
	Load(ctx context.Context, files EdgeListFiles) (AnalysisGraph, error)
}

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// Register makes an engine available by name.
// It panics if engine is nil or the name is already registered.
func Register(name string, engine Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	if engine == nil {
		panic("analysis: Register engine is nil")
	}
	if _, dup := engines[name]; dup {
		panic("analysis: Register called twice for engine " + name)
	}
	engines[name] = engine
}

// Engines returns the sorted names of the registered engines.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenEngine returns the engine registered under name, or DefaultEngine when name is empty.
func OpenEngine(name string) (Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	enginesMu.RLock()
	engine, ok := engines[name]
	enginesMu.RUnlock()
	if ok {
		return engine, nil
	}

	fix := fmt.Sprintf("Import %s to register the %q engine", defaultEngineImport, DefaultEngine)
	if available := Engines(); len(available) > 0 {
		fix = fmt.Sprintf("Use one of the registered engines: %s", strings.Join(available, ", "))
	}
	return nil, kgerrors.NewDependencyError(
		"Graph engine unavailable",
		fmt.Sprintf("No graph engine named %q is registered in this build", name),
		fix,
		fmt.Errorf("%w: %s", ErrEngineUnavailable, name),
	)
}
