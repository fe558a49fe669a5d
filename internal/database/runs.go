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
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) CreateRun(ctx context.Context, run models.Run) error {
	_, err := s.db.ExecContext(ctx, queryInsertRun,
		run.Id,
		strconv.FormatUint(run.Seed, 10),
		run.CustomerScale,
		string(run.UseCase),
		run.OutputDir,
		string(run.Compression),
		string(models.RunRunning),
		run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to insert run %s: %w", run.Id, err)
	}
	zap.L().Debug("Run recorded", zap.String("run_id", run.Id))
	return nil
}

// FinishRun moves a running run to its terminal state. A run finishes once.
func (s *Service) FinishRun(ctx context.Context, runId string, status models.RunStatus, elapsed time.Duration, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}

	result, err := s.db.ExecContext(ctx, queryFinishRun,
		string(status), message, elapsed.Milliseconds(), time.Now().UTC(), runId)
	if err != nil {
		return fmt.Errorf("unable to finish run %s: %w", runId, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to finish run %s: %w", runId, err)
	}
	if affected == 0 {
		return s.missingOrFinished(ctx, runId)
	}
	return nil
}

func (s *Service) missingOrFinished(ctx context.Context, runId string) error {
	var status string
	err := s.db.QueryRowContext(ctx, queryRunExists, runId).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", store.ErrRunNotFound, runId)
	}
	if err != nil {
		return fmt.Errorf("unable to look up run %s: %w", runId, err)
	}
	return fmt.Errorf("%w: %s is %s", store.ErrRunFinished, runId, status)
}

func (s *Service) GetRun(ctx context.Context, runId string) (*models.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, queryGetRun, runId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, runId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to get run %s: %w", runId, err)
	}
	return run, nil
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, queryListRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query runs: %w", err)
	}
	defer closeRows(rows)

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan run row: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run      models.Run
		seed     string
		useCase  string
		codec    string
		status   string
		finished sql.NullTime
	)
	err := row.Scan(&run.Id, &seed, &run.CustomerScale, &useCase, &run.OutputDir, &codec,
		&status, &run.Error, &run.ElapsedMs, &run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	run.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt seed %q: %w", seed, err)
	}
	run.UseCase = models.UseCase(useCase)
	run.Compression = models.Codec(codec)
	run.Status = models.RunStatus(status)
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}
