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
	"errors"
	"fmt"
	"strings"

	"github.com/kraklabs/kgraph/pkg/hierarchy"
)

var (
	// ErrMissingColumn is returned when a source header lacks a required column.
	ErrMissingColumn = errors.New("header is missing required column")

	// ErrSeparatorInID marks a node id that contains the hierarchy path
	// separator. Such ids would make stored paths ambiguous.
	ErrSeparatorInID = fmt.Errorf("node id contains %q", hierarchy.PathSeparator)
)

// Node is one row of the nodes relation.
type Node struct {
	ID              string
	Category        Field[string]
	Name            Field[string]
	Description     Field[string]
	CrossReferences Field[string]
	Synonyms        Field[string]
	IRI             Field[string]
	ProvidedBy      Field[string]
	Deprecated      Field[bool]
	Subsets         Field[string]
}

// Edge is one row of the edges relation.
type Edge struct {
	ID                     string
	Subject                string
	Predicate              string
	Object                 string
	Relation               Field[string]
	KnowledgeSource        Field[string]
	PrimaryKnowledgeSource Field[string]
}

// Source file column names. Aliases map alternative header spellings onto them.
var (
	nodeColumns = []string{"id", "category", "name", "description", "xref", "synonym", "iri", "provided_by", "deprecated", "subsets"}
	edgeColumns = []string{"id", "subject", "predicate", "object", "relation", "knowledge_source", "primary_knowledge_source"}

	columnAliases = map[string]string{
		"cross_references":  "xref",
		"synonyms":          "synonym",
		"knowledge_sources": "knowledge_source",
	}
)

// columnIndex maps the known column names to their position in the header.
type columnIndex map[string]int

func newColumnIndex(header []string, known []string, required ...string) (columnIndex, error) {
	idx := make(columnIndex, len(known))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, r := range required {
		if _, ok := idx[r]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, r)
		}
	}
	return idx, nil
}

func (c columnIndex) cell(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// nodeParser converts TSV records into Nodes.
type nodeParser struct {
	cols columnIndex
	norm normalizer
}

func newNodeParser(header []string, nullValues []string) (*nodeParser, error) {
	cols, err := newColumnIndex(header, nodeColumns, "id")
	if err != nil {
		return nil, err
	}
	return &nodeParser{cols: cols, norm: newNormalizer(nullValues)}, nil
}

func (p *nodeParser) parse(rec []string) (Node, error) {
	id, ok := p.norm.text(p.cols.cell(rec, "id")).Get()
	if !ok {
		return Node{}, fmt.Errorf("missing id")
	}
	if strings.Contains(id, hierarchy.PathSeparator) {
		return Node{}, fmt.Errorf("%w: %s", ErrSeparatorInID, id)
	}
	deprecated, err := p.norm.boolean(p.cols.cell(rec, "deprecated"))
	if err != nil {
		return Node{}, fmt.Errorf("node %s: deprecated: %w", id, err)
	}
	return Node{
		ID:              id,
		Category:        p.norm.text(p.cols.cell(rec, "category")),
		Name:            p.norm.text(p.cols.cell(rec, "name")),
		Description:     p.norm.text(p.cols.cell(rec, "description")),
		CrossReferences: p.norm.text(p.cols.cell(rec, "xref")),
		Synonyms:        p.norm.text(p.cols.cell(rec, "synonym")),
		IRI:             p.norm.text(p.cols.cell(rec, "iri")),
		ProvidedBy:      p.norm.text(p.cols.cell(rec, "provided_by")),
		Deprecated:      deprecated,
		Subsets:         p.norm.text(p.cols.cell(rec, "subsets")),
	}, nil
}

// edgeParser converts TSV records into Edges.
type edgeParser struct {
	cols columnIndex
	norm normalizer
}

func newEdgeParser(header []string, nullValues []string) (*edgeParser, error) {
	cols, err := newColumnIndex(header, edgeColumns, "id", "subject", "predicate", "object")
	if err != nil {
		return nil, err
	}
	return &edgeParser{cols: cols, norm: newNormalizer(nullValues)}, nil
}

func (p *edgeParser) parse(rec []string) (Edge, error) {
	var req [4]string
	for i, name := range []string{"id", "subject", "predicate", "object"} {
		v, ok := p.norm.text(p.cols.cell(rec, name)).Get()
		if !ok {
			return Edge{}, fmt.Errorf("missing %s", name)
		}
		req[i] = v
	}
	for _, endpoint := range []string{req[1], req[3]} {
		if strings.Contains(endpoint, hierarchy.PathSeparator) {
			return Edge{}, fmt.Errorf("%w: %s", ErrSeparatorInID, endpoint)
		}
	}
	return Edge{
		ID:                     req[0],
		Subject:                req[1],
		Predicate:              req[2],
		Object:                 req[3],
		Relation:               p.norm.text(p.cols.cell(rec, "relation")),
		KnowledgeSource:        p.norm.text(p.cols.cell(rec, "knowledge_source")),
		PrimaryKnowledgeSource: p.norm.text(p.cols.cell(rec, "primary_knowledge_source")),
	}, nil
}
