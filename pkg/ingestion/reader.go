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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

// rowError describes the first malformed row of a chunk.
type rowError struct {
	Line int
	Err  error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *rowError) Unwrap() error { return e.Err }

// rawChunk is up to chunkSize records read in file order.
type rawChunk struct {
	Index     int
	Records   [][]string
	FirstLine int
	Bad       *rowError
}

// tsvReader reads a tab-separated file with a header row, a chunk at a time.
// Every line is one record: the format has no quoting, so a stray quote
// character is data and can never merge lines.
type tsvReader struct {
	r      *bufio.Reader
	header []string
	line   int
	bytes  atomic.Int64
	chunks int
	eof    bool
}

var (
	// ErrEmptyFile is returned for a source file without a header row.
	ErrEmptyFile = errors.New("file is empty: header row required")

	errFieldCount = errors.New("wrong number of fields")
)

func newTSVReader(r io.Reader) (*tsvReader, error) {
	t := &tsvReader{r: bufio.NewReaderSize(r, 1<<20)}
	header, err := t.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t.header = strings.Split(header, "\t")
	return t, nil
}

// readLine returns the next non-empty line without its terminator.
func (t *tsvReader) readLine() (string, error) {
	for !t.eof {
		raw, err := t.r.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", err
			}
			t.eof = true
		}
		if raw == "" {
			break
		}
		t.bytes.Add(int64(len(raw)))
		t.line++
		if line := strings.TrimRight(raw, "\r\n"); line != "" {
			return line, nil
		}
	}
	return "", io.EOF
}

// Header returns the column names of the file.
func (t *tsvReader) Header() []string { return t.header }

// BytesRead returns the number of bytes consumed so far.
func (t *tsvReader) BytesRead() int64 { return t.bytes.Load() }

// next reads up to size records. It returns io.EOF once no records remain.
// A row whose field count differs from the header is recorded on the chunk
// instead of being returned; only I/O failures end the read.
func (t *tsvReader) next(size int) (*rawChunk, error) {
	chunk := &rawChunk{Index: t.chunks}
	for len(chunk.Records) < size {
		line, err := t.readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(chunk.Records) == 0 {
			chunk.FirstLine = t.line
		}
		rec := strings.Split(line, "\t")
		if len(rec) != len(t.header) {
			if chunk.Bad == nil {
				chunk.Bad = &rowError{
					Line: t.line,
					Err:  fmt.Errorf("%w: got %d, header has %d", errFieldCount, len(rec), len(t.header)),
				}
			}
			// Keep the row slot so RowsRead stays accurate.
			rec = nil
		}
		chunk.Records = append(chunk.Records, rec)
	}
	if len(chunk.Records) == 0 {
		return nil, io.EOF
	}
	t.chunks++
	return chunk, nil
}
