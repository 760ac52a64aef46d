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
	"strings"

	"github.com/kraklabs/kgraph/internal/bootstrap"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/output"
	"github.com/kraklabs/kgraph/pkg/hierarchy"
)

// LineageResult is the JSON output of 'kgraph lineage'.
type LineageResult struct {
	ID          string           `json:"id"`
	Ancestors   []RelativeOutput `json:"ancestors"`
	Descendants []RelativeOutput `json:"descendants,omitempty"`
	Paths       []string         `json:"paths,omitempty"`
}

type RelativeOutput struct {
	ID       string `json:"id"`
	Distance int    `json:"distance"`
}

// runLineage reads the materialized hierarchy around one node.
//
// Examples:
//
//	kgraph lineage MONDO:0005148
//	kgraph lineage MONDO:0005148 --descendants
//	kgraph lineage MONDO:0005148 --from MONDO:0000001
func runLineage(ctx context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "lineage", "[options] <node-id>",
		"Lists the materialized ancestors of a node, nearest first.")
	descendants := fs.Bool("descendants", false, "Also list descendants")
	from := fs.String("from", "", "Print every stored path from this ancestor to the node")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return kgerrors.NewInputError("Expected one node id", "kgraph lineage takes exactly one argument",
			"Run: kgraph lineage <node-id>")
	}
	id := fs.Arg(0)

	cfg, err := e.config()
	if err != nil {
		return err
	}
	backend, err := bootstrap.OpenStore(cfg.StoreConfig(true), e.logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	result := LineageResult{ID: id, Ancestors: []RelativeOutput{}}
	anc, err := hierarchy.Ancestors(ctx, backend, id)
	if err != nil {
		return lookupError(err)
	}
	result.Ancestors = appendRelatives(result.Ancestors, anc)
	if *descendants {
		desc, err := hierarchy.Descendants(ctx, backend, id)
		if err != nil {
			return lookupError(err)
		}
		result.Descendants = appendRelatives(nil, desc)
	}
	if *from != "" {
		paths, err := hierarchy.Paths(ctx, backend, *from, id)
		if err != nil {
			return lookupError(err)
		}
		for _, p := range paths {
			result.Paths = append(result.Paths, strings.Join(p.Nodes, " > "))
		}
	}

	if e.globals.JSON {
		return output.JSONTo(e.stdout, result)
	}
	if err := printRelatives(e, "ancestor", result.Ancestors); err != nil {
		return err
	}
	if *descendants {
		if err := printRelatives(e, "descendant", result.Descendants); err != nil {
			return err
		}
	}
	for _, p := range result.Paths {
		e.printer.Infof("%s", p)
	}
	return nil
}

func appendRelatives(dst []RelativeOutput, rs []hierarchy.Relative) []RelativeOutput {
	for _, r := range rs {
		dst = append(dst, RelativeOutput{ID: r.ID, Distance: r.Distance})
	}
	return dst
}

func printRelatives(e *env, kind string, rs []RelativeOutput) error {
	rows := make([][]any, len(rs))
	for i, r := range rs {
		rows[i] = []any{r.ID, r.Distance}
	}
	return output.Table(e.stdout, []string{kind, "distance"}, rows)
}

func lookupError(err error) error {
	return kgerrors.NewDatabaseError("Hierarchy lookup failed", err.Error(),
		"Run 'kgraph materialize' if the hierarchy relation is missing", err)
}
