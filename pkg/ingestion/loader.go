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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kraklabs/kgraph/pkg/storage"
)

// LoadResult summarizes the load of one source file.
type LoadResult struct {
	// Path is the source file.
	Path string

	// Table is the relation the file was loaded into.
	Table string

	// Skipped is true when the source file did not exist.
	Skipped bool

	// RowsRead counts data rows read from the file, malformed ones included.
	RowsRead int

	// RowsInserted counts rows that were new to the relation.
	RowsInserted int64

	// RowsRejected counts rows dropped because their chunk was malformed.
	RowsRejected int

	// ChunksApplied is the number of chunks written to the store.
	ChunksApplied int

	// ChunksSkipped is the number of chunks dropped because of a malformed row.
	ChunksSkipped int

	// TableRows is the relation's row count after the load.
	TableRows int64

	// Duration is the wall time of the load.
	Duration time.Duration
}

// Progress is reported after every chunk.
type Progress struct {
	Path       string
	ChunkIndex int
	BytesRead  int64
	RowsRead   int
}

// Loader reads node and edge files in chunks and inserts them into the store.
type Loader struct {
	backend storage.Backend
	config  Config
	logger  *slog.Logger

	// OnProgress, when set, is called after each chunk is handled.
	OnProgress func(Progress)
}

// NewLoader creates a loader. Zero-valued config fields take their defaults.
func NewLoader(backend storage.Backend, config Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		backend: backend,
		config:  config.WithDefaults(),
		logger:  logger,
	}
}

// LoadNodes loads a nodes file into the nodes relation.
func (l *Loader) LoadNodes(ctx context.Context, path string) (*LoadResult, error) {
	batcher := NewNodeBatcher(l.backend)
	return load(ctx, l, path, storage.TableNodes, l.config.NodeChunkSize,
		func(header []string) (func([]string) (Node, error), error) {
			p, err := newNodeParser(header, l.config.NullValues)
			if err != nil {
				return nil, err
			}
			return p.parse, nil
		},
		batcher.Insert,
	)
}

// LoadEdges loads an edges file into the edges relation.
func (l *Loader) LoadEdges(ctx context.Context, path string) (*LoadResult, error) {
	batcher := NewEdgeBatcher(l.backend)
	return load(ctx, l, path, storage.TableEdges, l.config.EdgeChunkSize,
		func(header []string) (func([]string) (Edge, error), error) {
			p, err := newEdgeParser(header, l.config.NullValues)
			if err != nil {
				return nil, err
			}
			return p.parse, nil
		},
		batcher.Insert,
	)
}

// load is the chunk loop shared by nodes and edges. Chunks are read and
// inserted strictly one after another, so at most one chunk is held in memory.
func load[T any](
	ctx context.Context,
	l *Loader,
	path, table string,
	chunkSize int,
	newParser func(header []string) (func([]string) (T, error), error),
	insert func(context.Context, []T) (int64, error),
) (*LoadResult, error) {
	start := time.Now()
	result := &LoadResult{Path: path, Table: table}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("ingestion.source.missing", "path", path, "table", table)
			recordSourceMissing(table)
			result.Skipped = true
			result.Duration = time.Since(start)
			return result, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader, err := newTSVReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	parse, err := newParser(reader.Header())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Info("ingestion.load.start", "path", path, "table", table, "chunk_size", chunkSize)

	rows := make([]T, 0, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, err := reader.next(chunkSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: chunk %d: %w", path, result.ChunksApplied+result.ChunksSkipped, err)
		}
		result.RowsRead += len(chunk.Records)

		rows = rows[:0]
		bad := chunk.Bad
		if bad == nil {
			for i, rec := range chunk.Records {
				row, err := parse(rec)
				if err != nil {
					line := chunk.FirstLine + i
					bad = &rowError{Line: line, Err: err}
					break
				}
				rows = append(rows, row)
			}
		}

		if bad != nil {
			result.ChunksSkipped++
			result.RowsRejected += len(chunk.Records)
			recordChunkSkipped(table)
			l.logger.Warn("ingestion.chunk.skipped",
				"path", path,
				"table", table,
				"chunk_index", chunk.Index,
				"rows", len(chunk.Records),
				"err", bad,
			)
			l.reportProgress(path, chunk.Index, reader.BytesRead(), result.RowsRead)
			continue
		}

		writeStart := time.Now()
		inserted, err := insert(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("%s: insert chunk %d into %s: %w", path, chunk.Index, table, err)
		}
		observeWrite(time.Since(writeStart))
		recordRowsInserted(table, inserted)

		result.RowsInserted += inserted
		result.ChunksApplied++
		l.logger.Debug("ingestion.chunk.applied",
			"path", path,
			"table", table,
			"chunk_index", chunk.Index,
			"rows", len(rows),
			"inserted", inserted,
		)
		l.reportProgress(path, chunk.Index, reader.BytesRead(), result.RowsRead)
	}

	count, err := storage.CountRows(ctx, l.backend, table)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	result.TableRows = count
	result.Duration = time.Since(start)

	l.logger.Info("ingestion.load.complete",
		"path", path,
		"table", table,
		"rows_read", result.RowsRead,
		"rows_inserted", result.RowsInserted,
		"chunks_applied", result.ChunksApplied,
		"chunks_skipped", result.ChunksSkipped,
		"table_rows", result.TableRows,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (l *Loader) reportProgress(path string, chunk int, bytes int64, rows int) {
	if l.OnProgress == nil {
		return
	}
	l.OnProgress(Progress{Path: path, ChunkIndex: chunk, BytesRead: bytes, RowsRead: rows})
}
