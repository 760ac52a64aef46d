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
	"fmt"
)

// Default loader and materialization settings.
const (
	DefaultNodeChunkSize      = 50_000
	DefaultEdgeChunkSize      = 100_000
	DefaultHierarchyPredicate = "biolink:subclass_of"
	DefaultMaxHops            = 10
)

// DefaultNullValues are the literals normalized to Missing when read from a source file.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// Config controls the batch loader and the derived relations built after it.
type Config struct {
	// NodeChunkSize is the number of node rows read and inserted per transaction.
	NodeChunkSize int `yaml:"node_chunk_size"`

	// EdgeChunkSize is the number of edge rows per transaction. Edge rows are
	// narrower than node rows, so the default is twice as large.
	EdgeChunkSize int `yaml:"edge_chunk_size"`

	// HierarchyPredicate is the edge predicate whose closure is materialized.
	HierarchyPredicate string `yaml:"hierarchy_predicate"`

	// MaxHops bounds the path length of materialized hierarchy entries.
	MaxHops int `yaml:"max_hops"`

	// NullValues are normalized to Missing. Values are compared after trimming spaces.
	NullValues []string `yaml:"null_values"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		NodeChunkSize:      DefaultNodeChunkSize,
		EdgeChunkSize:      DefaultEdgeChunkSize,
		HierarchyPredicate: DefaultHierarchyPredicate,
		MaxHops:            DefaultMaxHops,
		NullValues:         append([]string(nil), DefaultNullValues...),
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.NodeChunkSize == 0 {
		c.NodeChunkSize = d.NodeChunkSize
	}
	if c.EdgeChunkSize == 0 {
		c.EdgeChunkSize = d.EdgeChunkSize
	}
	if c.HierarchyPredicate == "" {
		c.HierarchyPredicate = d.HierarchyPredicate
	}
	if c.MaxHops == 0 {
		c.MaxHops = d.MaxHops
	}
	if c.NullValues == nil {
		c.NullValues = d.NullValues
	}
	return c
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.NodeChunkSize <= 0 {
		return fmt.Errorf("node chunk size must be positive, got %d", c.NodeChunkSize)
	}
	if c.EdgeChunkSize <= 0 {
		return fmt.Errorf("edge chunk size must be positive, got %d", c.EdgeChunkSize)
	}
	if c.HierarchyPredicate == "" {
		return fmt.Errorf("hierarchy predicate must not be empty")
	}
	if c.MaxHops < 1 {
		return fmt.Errorf("max hops must be at least 1, got %d", c.MaxHops)
	}
	return nil
}

func (c Config) nullSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.NullValues))
	for _, v := range c.NullValues {
		set[v] = struct{}{}
	}
	return set
}
