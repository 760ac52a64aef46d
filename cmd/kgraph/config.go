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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/kgraph/internal/bootstrap"
	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/pkg/analysis"
	"github.com/kraklabs/kgraph/pkg/ingestion"
)

// DefaultConfigPath is where commands look for the project file.
const DefaultConfigPath = ".kgraph/project.yaml"

// DefaultStorePath is the store file of a new project.
const DefaultStorePath = ".kgraph/kgraph.db"

// Config is the contents of .kgraph/project.yaml.
type Config struct {
	Store     StoreSection     `yaml:"store"`
	Sources   SourcesSection   `yaml:"sources"`
	Loader    LoaderSection    `yaml:"loader"`
	Hierarchy HierarchySection `yaml:"hierarchy"`
	Graph     GraphSection     `yaml:"graph"`
}

type StoreSection struct {
	Path string `yaml:"path"`
}

type SourcesSection struct {
	Nodes string `yaml:"nodes"`
	Edges string `yaml:"edges"`
}

type LoaderSection struct {
	NodeChunkSize int      `yaml:"node_chunk_size"`
	EdgeChunkSize int      `yaml:"edge_chunk_size"`
	NullValues    []string `yaml:"null_values,omitempty"`
}

type HierarchySection struct {
	Predicate string `yaml:"predicate"`
	MaxHops   int    `yaml:"max_hops"`
}

type GraphSection struct {
	Engine  string `yaml:"engine"`
	TempDir string `yaml:"temp_dir,omitempty"`
}

// DefaultConfig returns the configuration written by 'kgraph init'.
func DefaultConfig() *Config {
	d := ingestion.DefaultConfig()
	return &Config{
		Store:   StoreSection{Path: DefaultStorePath},
		Sources: SourcesSection{Nodes: "nodes.tsv", Edges: "edges.tsv"},
		Loader: LoaderSection{
			NodeChunkSize: d.NodeChunkSize,
			EdgeChunkSize: d.EdgeChunkSize,
		},
		Hierarchy: HierarchySection{
			Predicate: d.HierarchyPredicate,
			MaxHops:   d.MaxHops,
		},
		Graph: GraphSection{Engine: analysis.DefaultEngine},
	}
}

// LoadConfig reads the project file at path. An empty path means
// DefaultConfigPath, which may be absent; an explicit path must exist.
// Fields missing from the file keep their defaults. KGRAPH_DB overrides
// the store path.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, kgerrors.NewConfigError(
				"Cannot parse kgraph configuration",
				fmt.Sprintf("%s is not valid YAML", path),
				"Fix the syntax or recreate it with 'kgraph init --force'",
				err,
			)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, kgerrors.NewConfigError(
			"Cannot read kgraph configuration",
			fmt.Sprintf("%s could not be read", path),
			"Check the --config path or run 'kgraph init'",
			err,
		)
	}

	if db := os.Getenv("KGRAPH_DB"); db != "" {
		cfg.Store.Path = db
	}

	if err := cfg.Ingestion().Validate(); err != nil {
		return nil, kgerrors.NewConfigError(
			"Invalid kgraph configuration",
			err.Error(),
			fmt.Sprintf("Correct the loader or hierarchy section of %s", path),
			err,
		)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating its directory.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Ingestion returns the library configuration; zero values take library defaults.
func (c *Config) Ingestion() ingestion.Config {
	return ingestion.Config{
		NodeChunkSize:      c.Loader.NodeChunkSize,
		EdgeChunkSize:      c.Loader.EdgeChunkSize,
		HierarchyPredicate: c.Hierarchy.Predicate,
		MaxHops:            c.Hierarchy.MaxHops,
		NullValues:         c.Loader.NullValues,
	}.WithDefaults()
}

// StoreConfig locates the store for bootstrap.
func (c *Config) StoreConfig(readOnly bool) bootstrap.StoreConfig {
	return bootstrap.StoreConfig{Path: c.Store.Path, ReadOnly: readOnly}
}
