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
	"errors"
	"strings"
	"time"

	"github.com/kraklabs/kgraph/internal/bootstrap"
	"github.com/kraklabs/kgraph/internal/contract"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/output"
)

// QueryResult is the JSON output of 'kgraph query'.
type QueryResult struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
	Count   int      `json:"count"`
}

// runQuery runs one read-only SQL statement against the store and prints
// the rows as a table, or as JSON under --json.
//
// Flags:
//   - --timeout: Query timeout (default: 30s)
//
// Examples:
//
//	kgraph query "SELECT predicate, edge_count FROM predicate_index LIMIT 10"
//	kgraph query "SELECT ancestor_id, path_length FROM hierarchy WHERE descendant_id = 'MONDO:0005148'"
func runQuery(ctx context.Context, args []string, e *env) error {
	fs := newCommandFlags(e, "query", "[options] <sql>",
		"Executes a read-only SQL query against the knowledge-graph store.\nRelations: nodes, edges, hierarchy, predicate_index.")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		return kgerrors.NewInputError("No query given", "kgraph query needs a SQL statement",
			"Run: kgraph query \"SELECT COUNT(*) FROM edges\"")
	}
	sql := strings.Join(fs.Args(), " ")
	if res := contract.ValidateReadOnlyQuery(sql); !res.OK {
		return kgerrors.NewInputError("Query rejected", res.Message,
			"Only a single SELECT, WITH, EXPLAIN or VALUES statement is accepted")
	}

	cfg, err := e.config()
	if err != nil {
		return err
	}
	backend, err := bootstrap.OpenStore(cfg.StoreConfig(true), e.logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	qctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	res, err := backend.Query(qctx, sql)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return kgerrors.NewDatabaseError("Query timed out", "No result within "+timeout.String(),
				"Raise --timeout or add a LIMIT clause", err)
		}
		return kgerrors.NewDatabaseError("Query failed", err.Error(),
			"Check the SQL; 'kgraph status' lists the relations", err)
	}

	if e.globals.JSON {
		rows := res.Rows
		if rows == nil {
			rows = [][]any{}
		}
		return output.JSONTo(e.stdout, QueryResult{Headers: res.Headers, Rows: rows, Count: len(rows)})
	}
	return output.Table(e.stdout, res.Headers, res.Rows)
}
