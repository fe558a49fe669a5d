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
	"path/filepath"
	"testing"

	"olap-graph-datagen-go/internal/batch"
	"olap-graph-datagen-go/internal/config"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, useCase models.UseCase) (*models.Config, *pipeline.Summary) {
	t.Helper()
	cfg := &models.Config{
		Generator: models.GeneratorConfig{
			CustomerScale:           10_000,
			ScaleTiers:              config.DefaultScaleTiers,
			Seed:                    7,
			ShardSize:               5_000,
			Parallelism:             2,
			UseCase:                 useCase,
			SegmentWeights:          models.DefaultSegmentWeights(),
			TransactionDensity:      1,
			InteractionsPerCustomer: 2,
			IncludeFixtures:         true,
			ReferenceTime:           config.DefaultReferenceTime,
			Fraud:                   models.DefaultFraudConfig(),
		},
		Output: models.OutputConfig{
			Dir:         filepath.Join(t.TempDir(), "data"),
			BatchSize:   20_000,
			Compression: models.CodecZstd,
		},
	}
	summary, err := pipeline.New(pipeline.PipelineConfig{Settings: cfg}).Run(context.Background())
	require.NoError(t, err)
	return cfg, summary
}

func TestDirAcceptsGeneratedOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("generates both datasets")
	}
	cfg, summary := generate(t, models.UseCaseBoth)

	report, err := Dir(context.Background(), Options{Root: cfg.Output.Dir, Rewrite: true, Codec: models.CodecGzip})
	require.NoError(t, err)
	assert.True(t, report.OK(), "violations: %v", report.Violations)

	files := 0
	for _, table := range summary.Tables {
		assert.Equal(t, table.Rows, report.Rows[string(table.Dataset)+"/"+table.Table], "%s/%s", table.Dataset, table.Table)
		files += table.Files
	}
	assert.Equal(t, files, report.Rewritten)

	for _, p := range models.AllFraudPatterns {
		assert.Positive(t, report.Patterns[p], "pattern %s", p)
	}
	assert.Equal(t, summary.FraudInstances[models.PatternMoneyLaundering], report.Patterns[models.PatternMoneyLaundering])
	assert.Equal(t, summary.FraudInstances[models.PatternAccountTakeover], report.Patterns[models.PatternAccountTakeover])
}

func TestDirReportsBrokenReferences(t *testing.T) {
	cfg, _ := generate(t, models.UseCaseCustomer360)
	root := cfg.Output.Dir

	files, err := batch.ListFiles(root, models.UseCaseCustomer360, models.TableCustomers)
	require.NoError(t, err)
	customers, err := batch.ReadFile[models.Customer](files[0])
	require.NoError(t, err)
	c := customers[0]

	orphan := models.Transaction{
		TransactionId: "orphan-1",
		CustomerId:    "no-such-customer",
		ProductId:     "no-such-product",
		Amount:        10,
		Quantity:      1,
		Timestamp:     c.RegistrationDate,
		Channel:       models.ChannelWeb,
		Status:        models.StatusCompleted,
	}
	early := orphan
	early.TransactionId = "early-1"
	early.CustomerId = c.CustomerId
	early.Timestamp = c.RegistrationDate.AddDate(0, 0, -1)

	dir := batch.TableDir(root, models.UseCaseCustomer360, models.TableTransactions)
	_, err = batch.WriteFile(filepath.Join(dir, batch.FileName(models.TableTransactions, 8888, 0)),
		[]models.Transaction{orphan, early}, models.CodecSnappy)
	require.NoError(t, err)

	report, err := Dir(context.Background(), Options{Root: root})
	require.NoError(t, err)
	assert.False(t, report.OK())

	joined := ""
	for _, v := range report.Violations {
		joined += v + "\n"
	}
	assert.Contains(t, joined, "unknown customer no-such-customer")
	assert.Contains(t, joined, "precedes registration")
	assert.Contains(t, joined, "unknown product no-such-product")
}

func TestDirCapsViolations(t *testing.T) {
	r := &Report{Rows: map[string]int64{}, maxViolations: 2}
	for i := 0; i < 5; i++ {
		r.violate("violation %d", i)
	}
	assert.Len(t, r.Violations, 2)
	assert.Equal(t, 3, r.Dropped)
	assert.False(t, r.OK())
}

func TestDirWithoutDatasets(t *testing.T) {
	_, err := Dir(context.Background(), Options{Root: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoDatasets)
}
