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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"olap-graph-datagen-go/internal/models"

	"github.com/cespare/xxhash/v2"
	"github.com/parquet-go/parquet-go"
)

// ErrUnknownCodec is returned for codecs that have no Parquet mapping.
var ErrUnknownCodec = errors.New("unknown compression codec")

func compression(codec models.Codec) (parquet.WriterOption, error) {
	switch codec {
	case models.CodecSnappy:
		return parquet.Compression(&parquet.Snappy), nil
	case models.CodecGzip:
		return parquet.Compression(&parquet.Gzip), nil
	case models.CodecLZ4:
		return parquet.Compression(&parquet.Lz4Raw), nil
	case models.CodecZstd:
		return parquet.Compression(&parquet.Zstd), nil
	case models.CodecNone:
		return parquet.Compression(&parquet.Uncompressed), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, codec)
}

// FileName renders <table>_batch_<shard>_<seq>.parquet.
func FileName(table string, shard, seq int) string {
	return fmt.Sprintf("%s_batch_%04d_%04d.parquet", table, shard, seq)
}

// TableDir is <root>/<dataset>/<table>.
func TableDir(root string, dataset models.UseCase, table string) string {
	return filepath.Join(root, string(dataset), table)
}

// Written describes a file after it has been published.
type Written struct {
	Rows     int64
	Bytes    int64
	Checksum string
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteFile writes rows to path atomically: the data goes to a hidden
// temporary file in the same directory, is synced and then renamed into
// place. Readers never observe a partial file; on failure the temporary
// file is removed.
func WriteFile[T any](path string, rows []T, codec models.Codec) (written Written, err error) {
	opt, err := compression(codec)
	if err != nil {
		return Written{}, err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return Written{}, fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	digest := xxhash.New()
	out := &countingWriter{w: io.MultiWriter(tmp, digest)}
	pw := parquet.NewGenericWriter[T](out, opt)
	if _, err = pw.Write(rows); err != nil {
		return Written{}, fmt.Errorf("failed to write rows to %s: %w", path, err)
	}
	if err = pw.Close(); err != nil {
		return Written{}, fmt.Errorf("failed to finish %s: %w", path, err)
	}
	// CreateTemp opens 0600; published files must be readable by loaders
	if err = tmp.Chmod(0o644); err != nil {
		return Written{}, fmt.Errorf("failed to set mode of %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return Written{}, fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return Written{}, fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return Written{}, fmt.Errorf("failed to publish %s: %w", path, err)
	}

	return Written{
		Rows:     int64(len(rows)),
		Bytes:    out.n,
		Checksum: strconv.FormatUint(digest.Sum64(), 16),
	}, nil
}

// ReadFile loads every row of a Parquet file.
func ReadFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// Rewrite re-serializes src into dst with the given codec and returns the
// row count of both sides.
func Rewrite[T any](src, dst string, codec models.Codec) (int64, int64, error) {
	rows, err := ReadFile[T](src)
	if err != nil {
		return 0, 0, err
	}
	if _, err := WriteFile(dst, rows, codec); err != nil {
		return 0, 0, err
	}
	back, err := ReadFile[T](dst)
	if err != nil {
		return 0, 0, err
	}
	return int64(len(rows)), int64(len(back)), nil
}

// Checksum hashes a file the same way WriteFile does.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return strconv.FormatUint(digest.Sum64(), 16), nil
}

// ListFiles returns the published batch files of a table in name order.
// Hidden temporary files are skipped.
func ListFiles(root string, dataset models.UseCase, table string) ([]string, error) {
	dir := TableDir(root, dataset, table)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name[0] == '.' || filepath.Ext(name) != ".parquet" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// PrepareOutput makes sure a dataset directory can receive a fresh run.
// A non-empty directory is rejected unless overwrite is set, in which case
// it is removed first. Runs never resume.
func PrepareOutput(root string, dataset models.UseCase, overwrite bool) error {
	dir := filepath.Join(root, string(dataset))
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to inspect %s: %w", dir, err)
	case len(entries) > 0 && !overwrite:
		return models.NewConfigError("DATA_OUTPUT_DIR", dir, "already contains data; enable overwrite to replace it")
	case len(entries) > 0:
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
