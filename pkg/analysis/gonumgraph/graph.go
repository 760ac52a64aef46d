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

package gonumgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// Graph is a directed multigraph keyed by knowledge-graph node ids.
// Parallel edges and self loops are kept.
type Graph struct {
	g *multi.DirectedGraph

	ids       map[string]int64
	labels    map[int64]string
	category  map[int64]string
	outDegree map[int64]int
	edges     int
}

// Edge is the line type stored in the multigraph. Line IDs are only unique
// between one pair of nodes, so the predicate travels with the line.
type Edge struct {
	F, T      graph.Node
	UID       int64
	Predicate string
}

// From implements graph.Line.
func (e Edge) From() graph.Node { return e.F }

// To implements graph.Line.
func (e Edge) To() graph.Node { return e.T }

// ID implements graph.Line.
func (e Edge) ID() int64 { return e.UID }

// ReversedLine implements graph.Line.
func (e Edge) ReversedLine() graph.Line {
	return Edge{F: e.T, T: e.F, UID: e.UID, Predicate: e.Predicate}
}

func newGraph() *Graph {
	return &Graph{
		g:         multi.NewDirectedGraph(),
		ids:       make(map[string]int64),
		labels:    make(map[int64]string),
		category:  make(map[int64]string),
		outDegree: make(map[int64]int),
	}
}

// addNode adds id unless it is already present. Only typed nodes record a category.
func (g *Graph) addNode(id, category string) graph.Node {
	if nid, ok := g.ids[id]; ok {
		return g.g.Node(nid)
	}
	n := g.g.NewNode()
	g.g.AddNode(n)
	g.ids[id] = n.ID()
	g.labels[n.ID()] = id
	if category != "" {
		g.category[n.ID()] = category
	}
	return n
}

func (g *Graph) addEdge(subject, object, predicate string) {
	from := g.addNode(subject, "")
	to := g.addNode(object, "")
	l := g.g.NewLine(from, to)
	g.g.SetLine(Edge{F: from, T: to, UID: l.ID(), Predicate: predicate})
	g.outDegree[from.ID()]++
	g.edges++
}

// Multigraph returns the underlying gonum graph for use with gonum algorithms.
func (g *Graph) Multigraph() *multi.DirectedGraph { return g.g }

// NodeID returns the gonum node ID of a knowledge-graph id.
func (g *Graph) NodeID(id string) (int64, bool) {
	nid, ok := g.ids[id]
	return nid, ok
}

// Label returns the knowledge-graph id of a gonum node ID.
func (g *Graph) Label(nid int64) (string, bool) {
	id, ok := g.labels[nid]
	return id, ok
}

// Predicate returns the predicate carried by a line of Multigraph.
func (g *Graph) Predicate(l graph.Line) (string, bool) {
	e, ok := l.(Edge)
	return e.Predicate, ok
}

// OutDegree counts the edges leaving id, parallel edges included.
func (g *Graph) OutDegree(id string) int {
	nid, ok := g.ids[id]
	if !ok {
		return 0
	}
	return g.outDegree[nid]
}

// Degree is a node id with its out-degree.
type Degree struct {
	ID  string
	Out int
}

// TopOutDegree returns up to n nodes with the highest out-degree, ties by id.
func (g *Graph) TopOutDegree(n int) []Degree {
	all := make([]Degree, 0, len(g.outDegree))
	for nid, d := range g.outDegree {
		all = append(all, Degree{ID: g.labels[nid], Out: d})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Out != all[j].Out {
			return all[i].Out > all[j].Out
		}
		return all[i].ID < all[j].ID
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Engine implements analysis.AnalysisGraph.
func (g *Graph) Engine() string { return Name }

// NodeCount implements analysis.AnalysisGraph.
func (g *Graph) NodeCount() int { return len(g.ids) }

// EdgeCount implements analysis.AnalysisGraph.
func (g *Graph) EdgeCount() int { return g.edges }

// HasNode implements analysis.AnalysisGraph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.ids[id]
	return ok
}

// Category implements analysis.AnalysisGraph.
func (g *Graph) Category(id string) (string, bool) {
	nid, ok := g.ids[id]
	if !ok {
		return "", false
	}
	c, ok := g.category[nid]
	return c, ok
}
