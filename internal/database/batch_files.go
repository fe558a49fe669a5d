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

package database

import (
	"context"
	"fmt"
	"strings"

	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/store"
)

// RecordBatchFile appends a published file to its run. Files are immutable,
// so recording the same path twice is an error.
func (s *Service) RecordBatchFile(ctx context.Context, file models.BatchFile) error {
	_, err := s.db.ExecContext(ctx, queryInsertBatchFile,
		file.RunId,
		string(file.Dataset),
		file.Table,
		file.Path,
		file.Shard,
		file.Sequence,
		file.Rows,
		file.Bytes,
		file.Checksum,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", store.ErrDuplicateBatchFile, file.Path)
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("%w: %s", store.ErrRunNotFound, file.RunId)
		}
		return fmt.Errorf("unable to record batch file %s: %w", file.Path, err)
	}
	return nil
}

func (s *Service) GetBatchFiles(ctx context.Context, runId string) ([]models.BatchFile, error) {
	rows, err := s.db.QueryContext(ctx, queryGetBatchFiles, runId)
	if err != nil {
		return nil, fmt.Errorf("unable to query batch files: %w", err)
	}
	defer closeRows(rows)

	var files []models.BatchFile
	for rows.Next() {
		var f models.BatchFile
		var dataset string
		if err := rows.Scan(&f.Id, &f.RunId, &dataset, &f.Table, &f.Path, &f.Shard, &f.Sequence,
			&f.Rows, &f.Bytes, &f.Checksum, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan batch file row: %w", err)
		}
		f.Dataset = models.UseCase(dataset)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batch file rows: %w", err)
	}
	return files, nil
}

func (s *Service) GetTableCounts(ctx context.Context, runId string) ([]models.TableCount, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTableCounts, runId)
	if err != nil {
		return nil, fmt.Errorf("unable to query table counts: %w", err)
	}
	defer closeRows(rows)

	var counts []models.TableCount
	for rows.Next() {
		var c models.TableCount
		var dataset string
		if err := rows.Scan(&dataset, &c.Table, &c.Files, &c.Rows, &c.Bytes); err != nil {
			return nil, fmt.Errorf("unable to scan table count row: %w", err)
		}
		c.Dataset = models.UseCase(dataset)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table count rows: %w", err)
	}
	return counts, nil
}
