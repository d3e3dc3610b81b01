/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package shard contains the shard file writer of GraphGen.

A Writer produces the output files for one (worker, type label) pair. Rows
are buffered in memory and written in batches. Every file starts with the
bulk load header of its type and is rolled over into a new index-suffixed
file once it holds a maximum number of rows. Files are grouped by record
kind and type label below the output root:

	<root>/vertices/<label>/<label>_w<worker>_<index>.csv
	<root>/edges/<label>/<label>_w<worker>_<index>.csv

A Writer is owned by a single worker and must not be shared.
*/
package shard

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"devt.de/krotik/common/pools"
)

/*
Record kinds for the output directory layout
*/
const (
	KindVertices = "vertices"
	KindEdges    = "edges"
)

/*
BufferPool is a pool of byte buffers for row batching.
*/
var BufferPool = pools.NewByteBufferPool()

/*
Writer is a buffered rolling file writer for one (worker, label) pair.
*/
type Writer struct {
	dir       string         // Directory holding the files of this writer
	label     string         // Type label
	header    string         // Header line written at the top of every file
	workerID  int            // Id of the owning worker
	batchSize int            // Rows buffered before a bulk write
	maxLines  int64          // Rows per file before rollover
	buf       *bytes.Buffer  // Row batch buffer
	bufRows   int            // Rows currently in the batch buffer
	fp        io.WriteCloser // Current output file
	fileIndex int            // Rollover index of the current file
	fileLines int64          // Rows written to the current file
	rows      int64          // Total rows written
	written   int64          // Total bytes written
	files     int            // Total files created
}

/*
NewWriter creates a new shard writer and opens its first output file.
*/
func NewWriter(root, kind, label string, workerID int, header string,
	batchSize int, maxLines int64) (*Writer, error) {

	dir := filepath.Join(root, kind, label)

	if err := os.MkdirAll(dir, 0770); err != nil {
		return nil, err
	}

	w := &Writer{
		dir:       dir,
		label:     label,
		header:    header,
		workerID:  workerID,
		batchSize: batchSize,
		maxLines:  maxLines,
		buf:       BufferPool.Get().(*bytes.Buffer),
	}

	if err := w.openNextFile(); err != nil {
		BufferPool.Put(w.buf)
		return nil, err
	}

	return w, nil
}

/*
WriteRow appends a row to the shard. The columns are joined with commas -
they must not contain separator characters (the value synthesizers
guarantee this by construction).
*/
func (w *Writer) WriteRow(cols ...string) error {

	if w.fileLines >= w.maxLines {

		// The current file is full - switch to the next one

		if err := w.rollover(); err != nil {
			return err
		}
	}

	for i, c := range cols {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.buf.WriteString(c)
	}
	w.buf.WriteByte('\n')

	w.bufRows++
	w.fileLines++
	w.rows++

	if w.bufRows >= w.batchSize {
		return w.Flush()
	}

	return nil
}

/*
Flush writes the buffered rows to the current file in a single bulk write.
*/
func (w *Writer) Flush() error {

	if w.bufRows == 0 {
		return nil
	}

	n, err := w.fp.Write(w.buf.Bytes())
	w.written += int64(n)

	w.buf.Reset()
	w.bufRows = 0

	return err
}

/*
Close flushes all pending rows and closes the current file.
*/
func (w *Writer) Close() error {
	err := w.Flush()

	if cerr := w.fp.Close(); err == nil {
		err = cerr
	}

	w.buf.Reset()
	BufferPool.Put(w.buf)
	w.buf = nil

	return err
}

/*
Stats returns the total number of rows, bytes and files this writer has
produced. Header lines are counted as bytes but not as rows.
*/
func (w *Writer) Stats() (int64, int64, int) {
	return w.rows, w.written, w.files
}

/*
rollover closes the current file and opens the next one.
*/
func (w *Writer) rollover() error {

	if err := w.Flush(); err != nil {
		return err
	}

	if err := w.fp.Close(); err != nil {
		return err
	}

	return w.openNextFile()
}

/*
openNextFile opens a new output file and writes the header line.
*/
func (w *Writer) openNextFile() error {
	name := fmt.Sprintf("%s_w%d_%d.csv", w.label, w.workerID, w.fileIndex)

	fp, err := os.OpenFile(filepath.Join(w.dir, name),
		os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0660)
	if err != nil {
		return err
	}

	n, err := fmt.Fprintln(fp, w.header)
	if err != nil {
		fp.Close()
		return err
	}

	w.fp = fp
	w.fileIndex++
	w.fileLines = 0
	w.files++
	w.written += int64(n)

	return nil
}

/*
DiskFor selects the output root for a given worker. With configured mount
points the workers are distributed round-robin - otherwise the flat
fallback directory is used.
*/
func DiskFor(workerID int, disks []string, fallback string) string {

	if len(disks) == 0 {
		return fallback
	}

	return disks[workerID%len(disks)]
}
