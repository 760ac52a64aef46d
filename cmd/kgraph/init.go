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
	"context"
	"fmt"
	"os"

	"github.com/kraklabs/kgraph/internal/bootstrap"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/output"
)

// InitResult is the JSON output of 'kgraph init'.
type InitResult struct {
	ConfigPath string               `json:"config_path"`
	Store      *bootstrap.StoreInfo `json:"store"`
}

// runInit writes .kgraph/project.yaml and creates the store with its schema.
//
// Flags:
//   - --force: Overwrite an existing project file
//   - --store: Store file (default: .kgraph/kgraph.db)
//   - --nodes, --edges: Source files recorded for 'kgraph run'
//
// Examples:
//
//	kgraph init
//	kgraph init --nodes kg_nodes.tsv --edges kg_edges.tsv
func runInit(_ context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "init", "[options]",
		"Creates the project file and an empty knowledge-graph store.")
	force := fs.Bool("force", false, "Overwrite an existing project file")
	store := fs.String("store", DefaultStorePath, "Store file")
	nodes := fs.String("nodes", "nodes.tsv", "Nodes TSV file used by 'kgraph run'")
	edges := fs.String("edges", "edges.tsv", "Edges TSV file used by 'kgraph run'")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	path := e.globals.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return kgerrors.NewInputError(
			"Project already initialized",
			fmt.Sprintf("%s exists", path),
			"Use 'kgraph init --force' to overwrite it",
		)
	}

	cfg := DefaultConfig()
	cfg.Store.Path = *store
	cfg.Sources.Nodes = *nodes
	cfg.Sources.Edges = *edges
	if err := SaveConfig(path, cfg); err != nil {
		return kgerrors.NewPermissionError(
			"Cannot write project file",
			err.Error(),
			"Check write access to the current directory",
			err,
		)
	}

	storeCfg := cfg.StoreConfig(false)
	if db := os.Getenv("KGRAPH_DB"); db != "" {
		storeCfg.Path = db
	}
	info, err := bootstrap.InitStore(storeCfg, e.logger)
	if err != nil {
		return err
	}

	if e.globals.JSON {
		return output.JSONTo(e.stdout, InitResult{ConfigPath: path, Store: info})
	}
	e.printer.Successf("Wrote %s", path)
	e.printer.Successf("Store ready at %s", info.Path)
	e.printer.Infof("Next: kgraph run")
	return nil
}
