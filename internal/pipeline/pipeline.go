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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"olap-graph-datagen-go/internal/batch"
	"olap-graph-datagen-go/internal/config"
	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/metrics"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineConfig contains the collaborators of a Pipeline. Manifest and
// Metrics are optional.
type PipelineConfig struct {
	Settings *models.Config
	Manifest store.ManifestStore
	Metrics  *metrics.Metrics
}

// Pipeline runs one generation: plan, materialize pools, fan shards out to
// a bounded worker pool and publish batch files.
type Pipeline struct {
	cfg      *models.Config
	manifest store.ManifestStore
	metrics  *metrics.Metrics

	runId  string
	mutex  sync.Mutex
	counts map[tableKey]*models.TableCount
}

type tableKey struct {
	dataset models.UseCase
	table   string
}

// Summary reports what a run produced.
type Summary struct {
	RunId          string
	Tables         []models.TableCount
	FraudInstances map[models.FraudPattern]int
	Elapsed        time.Duration
}

// Rows returns the row count of one table, zero when absent.
func (s *Summary) Rows(dataset models.UseCase, table string) int64 {
	for _, t := range s.Tables {
		if t.Dataset == dataset && t.Table == table {
			return t.Rows
		}
	}
	return 0
}

func New(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		cfg:      cfg.Settings,
		manifest: cfg.Manifest,
		metrics:  cfg.Metrics,
		counts:   make(map[tableKey]*models.TableCount),
	}
}

// Run validates the configuration, then generates every dataset of the
// configured use case. Configuration errors surface before any directory
// is touched.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	if err := config.Validate(p.cfg); err != nil {
		return nil, err
	}
	g := p.cfg.Generator

	var layout *entity.FraudLayout
	if g.UseCase.Includes(models.UseCaseFraud) {
		var err error
		if layout, err = entity.PlanFraud(g); err != nil {
			return nil, err
		}
	}

	datasets := g.UseCase.Datasets()
	for _, dataset := range datasets {
		if err := batch.PrepareOutput(p.cfg.Output.Dir, dataset, p.cfg.Output.Overwrite); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	p.runId = uuid.NewString()
	if p.manifest != nil {
		run := models.Run{
			Id:            p.runId,
			Seed:          g.Seed,
			CustomerScale: g.CustomerScale,
			UseCase:       g.UseCase,
			OutputDir:     p.cfg.Output.Dir,
			Compression:   p.cfg.Output.Compression,
			StartedAt:     start,
		}
		if err := p.manifest.CreateRun(ctx, run); err != nil {
			return nil, err
		}
	}

	zap.L().Info("Starting generation",
		zap.String("run_id", p.runId),
		zap.Int("customers", g.CustomerScale),
		zap.Uint64("seed", g.Seed),
		zap.String("use_case", string(g.UseCase)),
		zap.Int("parallelism", g.Parallelism),
		zap.String("output_dir", p.cfg.Output.Dir))

	summary := &Summary{RunId: p.runId}
	var runErr error
	for _, dataset := range datasets {
		switch dataset {
		case models.UseCaseCustomer360:
			runErr = p.customer360(ctx)
		case models.UseCaseFraud:
			summary.FraudInstances, runErr = p.fraudDataset(ctx, layout)
		}
		if runErr != nil {
			break
		}
	}

	summary.Elapsed = time.Since(start)
	summary.Tables = p.tableCounts()
	p.finish(runErr, summary.Elapsed)
	if runErr != nil {
		return summary, runErr
	}

	zap.L().Info("Generation complete",
		zap.String("run_id", p.runId),
		zap.Duration("elapsed", summary.Elapsed),
		zap.Int("tables", len(summary.Tables)))
	return summary, nil
}

// finish closes the manifest run and exports metrics. Failures here are
// logged so they never mask the run's own error.
func (p *Pipeline) finish(runErr error, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveRun(elapsed)
		if file := p.cfg.Metrics.File; file != "" {
			if err := p.metrics.WriteTextfile(file); err != nil {
				zap.L().Warn("Failed to write metrics textfile", zap.String("path", file), zap.Error(err))
			}
		}
	}
	if p.manifest == nil {
		return
	}

	status := models.RunCompleted
	if runErr != nil {
		status = models.RunFailed
	}
	// the run context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.manifest.FinishRun(ctx, p.runId, status, elapsed, runErr); err != nil {
		zap.L().Error("Failed to finish manifest run", zap.String("run_id", p.runId), zap.Error(err))
	}
}

// publish is the batch.Publisher of every writer in the run. It is the
// only point where workers coordinate.
func (p *Pipeline) publish(ctx context.Context) batch.Publisher {
	return func(f models.BatchFile) error {
		f.RunId = p.runId
		f.CreatedAt = time.Now()

		p.mutex.Lock()
		defer p.mutex.Unlock()

		key := tableKey{f.Dataset, f.Table}
		c, ok := p.counts[key]
		if !ok {
			c = &models.TableCount{Dataset: f.Dataset, Table: f.Table}
			p.counts[key] = c
		}
		c.Files++
		c.Rows += f.Rows
		c.Bytes += f.Bytes

		if p.metrics != nil {
			p.metrics.ObserveFile(f)
		}
		if p.manifest != nil {
			if err := p.manifest.RecordBatchFile(ctx, f); err != nil {
				if errors.Is(err, store.ErrDuplicateBatchFile) {
					return fmt.Errorf("batch file %s published twice: %w", f.Path, err)
				}
				return err
			}
		}
		zap.L().Debug("Batch file published",
			zap.String("path", f.Path),
			zap.Int64("rows", f.Rows),
			zap.Int64("bytes", f.Bytes))
		return nil
	}
}

func (p *Pipeline) options(ctx context.Context) batch.Options {
	return batch.Options{
		Root:      p.cfg.Output.Dir,
		BatchSize: p.cfg.Output.BatchSize,
		Codec:     p.cfg.Output.Compression,
		Publish:   p.publish(ctx),
	}
}

func (p *Pipeline) tableCounts() []models.TableCount {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	order := make(map[string]int)
	for i, t := range append(append([]string{}, models.Customer360Tables...), models.FraudTables...) {
		if _, ok := order[t]; !ok {
			order[t] = i
		}
	}
	out := make([]models.TableCount, 0, len(p.counts))
	for _, c := range p.counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dataset != out[j].Dataset {
			return out[i].Dataset < out[j].Dataset
		}
		return order[out[i].Table] < order[out[j].Table]
	})
	return out
}

// shards splits n items into fixed-size shards. The split never depends on
// parallelism.
func shards(n, size int) int {
	return (n + size - 1) / size
}

func (p *Pipeline) observeShard(dataset models.UseCase, start time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveShard(dataset, time.Since(start))
	}
}
