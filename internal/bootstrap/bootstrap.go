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

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/pkg/storage"
)

// StoreConfig locates the store file.
type StoreConfig struct {
	// Path is the store file. When empty the file lives under DataDir.
	Path string

	// DataDir defaults to ~/.kgraph/data/<project_id>.
	DataDir string

	ProjectID string

	// ReadOnly is honored by OpenStore only.
	ReadOnly bool
}

func (c StoreConfig) embedded() storage.EmbeddedConfig {
	return storage.EmbeddedConfig{
		Path:      c.Path,
		DataDir:   c.DataDir,
		ProjectID: c.ProjectID,
		ReadOnly:  c.ReadOnly,
	}
}

// StoreInfo describes an initialized store.
type StoreInfo struct {
	Path   string           `json:"path"`
	Counts map[string]int64 `json:"counts"`
}

// InitStore creates the store file and schema if needed.
func InitStore(config StoreConfig, logger *slog.Logger) (*StoreInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	config.ReadOnly = false

	path, err := config.embedded().ResolvePath()
	if err != nil {
		return nil, kgerrors.NewConfigError("Cannot resolve store path", err.Error(),
			"Set store.path in .kgraph/project.yaml or KGRAPH_DB", err)
	}
	logger.Info("bootstrap.store.init.start", "path", path)

	backend, err := storage.NewEmbeddedBackend(config.embedded())
	if err != nil {
		return nil, openError(path, err)
	}
	defer func() { _ = backend.Close() }()

	counts, err := Counts(context.Background(), backend)
	if err != nil {
		return nil, err
	}

	logger.Info("bootstrap.store.init.success", "path", path)
	return &StoreInfo{Path: path, Counts: counts}, nil
}

// OpenStore opens an existing store. A missing store file is an ExitNotFound error.
func OpenStore(config StoreConfig, logger *slog.Logger) (*storage.EmbeddedBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	path, err := config.embedded().ResolvePath()
	if err != nil {
		return nil, kgerrors.NewConfigError("Cannot resolve store path", err.Error(),
			"Set store.path in .kgraph/project.yaml or KGRAPH_DB", err)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, kgerrors.NewNotFoundError(
				"Knowledge-graph store not found",
				fmt.Sprintf("%s does not exist", path),
				"Run 'kgraph init' or 'kgraph load' first",
				err,
			)
		}
		return nil, openError(path, err)
	}

	logger.Debug("bootstrap.store.open", "path", path, "read_only", config.ReadOnly)
	backend, err := storage.NewEmbeddedBackend(config.embedded())
	if err != nil {
		return nil, openError(path, err)
	}
	return backend, nil
}

// OpenOrCreateStore opens the store for writing, creating it when missing.
func OpenOrCreateStore(config StoreConfig, logger *slog.Logger) (*storage.EmbeddedBackend, error) {
	config.ReadOnly = false
	backend, err := storage.NewEmbeddedBackend(config.embedded())
	if err != nil {
		path, _ := config.embedded().ResolvePath()
		return nil, openError(path, err)
	}
	if logger != nil {
		logger.Debug("bootstrap.store.open", "path", backend.Path(), "read_only", false)
	}
	return backend, nil
}

// Counts returns the row count of every relation.
func Counts(ctx context.Context, backend storage.Backend) (map[string]int64, error) {
	counts := make(map[string]int64, len(storage.Tables))
	for _, table := range storage.Tables {
		n, err := storage.CountRows(ctx, backend, table)
		if err != nil {
			return nil, kgerrors.NewDatabaseError(
				fmt.Sprintf("Cannot count %s", table),
				"The store schema may be missing or damaged",
				"Run 'kgraph init' to recreate missing tables",
				err,
			)
		}
		counts[table] = n
	}
	return counts, nil
}

func openError(path string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return kgerrors.NewPermissionError(
			"Cannot open the knowledge-graph store",
			fmt.Sprintf("Permission denied for %s", path),
			"Check the file permissions or choose another store.path",
			err,
		)
	}
	return kgerrors.NewDatabaseError(
		"Cannot open the knowledge-graph store",
		fmt.Sprintf("Opening %s failed", path),
		"Check that the file is a kgraph store and no other process holds a write lock",
		err,
	)
}
