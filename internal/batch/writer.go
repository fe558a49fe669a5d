/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"olap-graph-datagen-go/internal/models"
)

// Publisher is told about every file once it is visible under its final
// name. Publishers are called from worker goroutines and must be safe for
// concurrent use.
type Publisher func(models.BatchFile) error

// Options are shared by every writer of a run.
type Options struct {
	Root      string
	BatchSize int
	Codec     models.Codec
	Publish   Publisher
}

// Writer buffers rows of one table for one shard and publishes a file each
// time BatchSize rows are collected. A Writer belongs to a single goroutine.
type Writer[T any] struct {
	opts    Options
	dataset models.UseCase
	table   string
	shard   int
	seq     int
	buf     []T
	rows    int64
}

func NewWriter[T any](opts Options, dataset models.UseCase, table string, shard int) *Writer[T] {
	return &Writer[T]{
		opts:    opts,
		dataset: dataset,
		table:   table,
		shard:   shard,
		buf:     make([]T, 0, min(opts.BatchSize, 1<<16)),
	}
}

// Write buffers a row, flushing when the batch is full.
func (w *Writer[T]) Write(row T) error {
	w.buf = append(w.buf, row)
	if len(w.buf) >= w.opts.BatchSize {
		return w.Flush()
	}
	return nil
}

// Emit adapts Write to the generator callbacks.
func (w *Writer[T]) Emit(row T) error {
	return w.Write(row)
}

// Flush publishes buffered rows, if any, as the next batch file.
func (w *Writer[T]) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	dir := TableDir(w.opts.Root, w.dataset, w.table)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName(w.table, w.shard, w.seq))
	written, err := WriteFile(path, w.buf, w.opts.Codec)
	if err != nil {
		return err
	}
	file := models.BatchFile{
		Dataset:  w.dataset,
		Table:    w.table,
		Path:     path,
		Shard:    w.shard,
		Sequence: w.seq,
		Rows:     written.Rows,
		Bytes:    written.Bytes,
		Checksum: written.Checksum,
	}
	w.seq++
	w.rows += written.Rows
	clear(w.buf)
	w.buf = w.buf[:0]

	if w.opts.Publish != nil {
		return w.opts.Publish(file)
	}
	return nil
}

// Close flushes the final partial batch.
func (w *Writer[T]) Close() error {
	return w.Flush()
}

// Rows is the number of rows published so far.
func (w *Writer[T]) Rows() int64 {
	return w.rows
}

// WriteAll writes a materialized slice through a fresh writer.
func WriteAll[T any](opts Options, dataset models.UseCase, table string, shard int, rows []T) (int64, error) {
	w := NewWriter[T](opts, dataset, table, shard)
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return w.Rows(), err
		}
	}
	err := w.Close()
	return w.Rows(), err
}
