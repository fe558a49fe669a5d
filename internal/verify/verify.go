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

package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"olap-graph-datagen-go/internal/batch"
	"olap-graph-datagen-go/internal/models"

	"go.uber.org/zap"
)

// ErrNoDatasets is returned when the root holds neither dataset.
var ErrNoDatasets = errors.New("no datasets found")

const defaultMaxViolations = 100

// Options controls a verification pass.
type Options struct {
	Root string
	// Rewrite re-serializes every file into a scratch directory and
	// compares row counts.
	Rewrite       bool
	Codec         models.Codec
	MaxViolations int
}

// Report is the outcome of a verification pass. Violations are capped;
// Dropped counts the ones not kept.
type Report struct {
	Rows       map[string]int64
	Patterns   map[models.FraudPattern]int
	Violations []string
	Dropped    int
	Rewritten  int

	maxViolations int
}

func (r *Report) OK() bool {
	return len(r.Violations) == 0 && r.Dropped == 0
}

func (r *Report) violate(format string, args ...any) {
	if len(r.Violations) >= r.maxViolations {
		r.Dropped++
		return
	}
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

func (r *Report) count(dataset models.UseCase, table string, n int) {
	r.Rows[string(dataset)+"/"+table] += int64(n)
}

// Dir verifies every dataset found under opts.Root.
func Dir(ctx context.Context, opts Options) (*Report, error) {
	if opts.MaxViolations <= 0 {
		opts.MaxViolations = defaultMaxViolations
	}
	if opts.Codec == "" {
		opts.Codec = models.CodecSnappy
	}
	report := &Report{
		Rows:          make(map[string]int64),
		Patterns:      make(map[models.FraudPattern]int),
		maxViolations: opts.MaxViolations,
	}

	found := 0
	for _, dataset := range models.UseCaseBoth.Datasets() {
		info, err := os.Stat(filepath.Join(opts.Root, string(dataset)))
		if err != nil || !info.IsDir() {
			continue
		}
		found++

		switch dataset {
		case models.UseCaseCustomer360:
			err = checkCustomer360(ctx, opts.Root, report)
		case models.UseCaseFraud:
			err = checkFraud(ctx, opts.Root, report)
		}
		if err != nil {
			return nil, err
		}
		if opts.Rewrite {
			if err := rewriteDataset(ctx, opts, dataset, report); err != nil {
				return nil, err
			}
		}
	}
	if found == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoDatasets, opts.Root)
	}

	zap.L().Info("Verification finished",
		zap.String("root", opts.Root),
		zap.Int("violations", len(report.Violations)+report.Dropped),
		zap.Int("rewritten", report.Rewritten))
	return report, nil
}

// eachFile streams a table one batch file at a time.
func eachFile[T any](ctx context.Context, root string, dataset models.UseCase, table string, fn func([]T)) error {
	files, err := batch.ListFiles(root, dataset, table)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := batch.ReadFile[T](f)
		if err != nil {
			return err
		}
		fn(rows)
	}
	return nil
}

func loadAll[T any](ctx context.Context, root string, dataset models.UseCase, table string) ([]T, error) {
	var out []T
	err := eachFile(ctx, root, dataset, table, func(rows []T) {
		out = append(out, rows...)
	})
	return out, err
}
