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
	"os"
	"path/filepath"
	"testing"
	"time"

	"olap-graph-datagen-go/internal/batch"
	"olap-graph-datagen-go/internal/config"
	"olap-graph-datagen-go/internal/database"
	"olap-graph-datagen-go/internal/metrics"
	"olap-graph-datagen-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T, customers int) *models.Config {
	t.Helper()
	return &models.Config{
		Generator: models.GeneratorConfig{
			CustomerScale:           customers,
			ScaleTiers:              config.DefaultScaleTiers,
			Seed:                    42,
			ShardSize:               2_000,
			Parallelism:             4,
			UseCase:                 models.UseCaseBoth,
			SegmentWeights:          models.DefaultSegmentWeights(),
			TransactionDensity:      1,
			InteractionsPerCustomer: 12,
			IncludeFixtures:         true,
			ReferenceTime:           config.DefaultReferenceTime,
			Fraud:                   models.DefaultFraudConfig(),
		},
		Output: models.OutputConfig{
			Dir:         filepath.Join(t.TempDir(), "data"),
			BatchSize:   5_000,
			Compression: models.CodecSnappy,
		},
	}
}

func checksums(t *testing.T, root string, dataset models.UseCase, tables []string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, table := range tables {
		files, err := batch.ListFiles(root, dataset, table)
		require.NoError(t, err)
		for _, f := range files {
			sum, err := batch.Checksum(f)
			require.NoError(t, err)
			rel, err := filepath.Rel(root, f)
			require.NoError(t, err)
			out[rel] = sum
		}
	}
	return out
}

func TestRunHundredThousandCustomers(t *testing.T) {
	if testing.Short() {
		t.Skip("generates 100k customers")
	}
	cfg := testSettings(t, 100_000)
	cfg.Generator.ShardSize = 50_000
	cfg.Generator.UseCase = models.UseCaseCustomer360
	cfg.Generator.IncludeFixtures = false
	cfg.Generator.InteractionsPerCustomer = 0
	cfg.Output.BatchSize = 100_000
	cfg.Output.Compression = models.CodecNone

	summary, err := New(PipelineConfig{Settings: cfg}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(100_000), summary.Rows(models.UseCaseCustomer360, models.TableCustomers))
	assert.Equal(t, int64(10_000), summary.Rows(models.UseCaseCustomer360, models.TableProducts))
	txns := summary.Rows(models.UseCaseCustomer360, models.TableTransactions)
	assert.True(t, txns >= 690_000 && txns <= 750_000, "transactions %d", txns)
	assert.Zero(t, summary.Rows(models.UseCaseCustomer360, models.TableInteractions))

	files, err := batch.ListFiles(cfg.Output.Dir, models.UseCaseCustomer360, models.TableCustomers)
	require.NoError(t, err)
	require.Len(t, files, 2)
	vip := 0
	for _, f := range files {
		customers, err := batch.ReadFile[models.Customer](f)
		require.NoError(t, err)
		for _, c := range customers {
			if c.Segment == models.SegmentVIP {
				vip++
			}
		}
	}
	assert.True(t, vip >= 7_900 && vip <= 8_700, "vip customers %d", vip)
}

func TestRunDeterministicAcrossParallelism(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the generator twice")
	}
	serial := testSettings(t, 10_000)
	serial.Generator.Parallelism = 1
	parallel := testSettings(t, 10_000)
	parallel.Generator.Parallelism = 6

	_, err := New(PipelineConfig{Settings: serial}).Run(context.Background())
	require.NoError(t, err)
	_, err = New(PipelineConfig{Settings: parallel}).Run(context.Background())
	require.NoError(t, err)

	for _, dataset := range models.UseCaseBoth.Datasets() {
		tables := models.Customer360Tables
		if dataset == models.UseCaseFraud {
			tables = models.FraudTables
		}
		a := checksums(t, serial.Output.Dir, dataset, tables)
		b := checksums(t, parallel.Output.Dir, dataset, tables)
		require.NotEmpty(t, a)
		assert.Equal(t, a, b, "dataset %s differs between parallelism 1 and 6", dataset)
	}
}

func TestRunRecordsManifestAndMetrics(t *testing.T) {
	cfg := testSettings(t, 10_000)
	cfg.Generator.UseCase = models.UseCaseFraud
	cfg.Database = models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "manifest.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	}
	cfg.Metrics.File = filepath.Join(t.TempDir(), "datagen.prom")

	ctx := context.Background()
	db, err := database.NewService(ctx, cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	summary, err := New(PipelineConfig{Settings: cfg, Manifest: db, Metrics: metrics.New()}).Run(ctx)
	require.NoError(t, err)

	run, err := db.GetRun(ctx, summary.RunId)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, run.Status)
	assert.Equal(t, uint64(42), run.Seed)

	counts, err := db.GetTableCounts(ctx, summary.RunId)
	require.NoError(t, err)
	assert.ElementsMatch(t, summary.Tables, counts)

	scale := cfg.Generator.Fraud.Scales[models.FraudScaleSmall]
	assert.Equal(t, int64(scale.Accounts), summary.Rows(models.UseCaseFraud, models.TableAccounts))
	assert.Equal(t, int64(scale.Devices), summary.Rows(models.UseCaseFraud, models.TableDevices))
	for _, p := range models.AllFraudPatterns {
		assert.Positive(t, summary.FraudInstances[p], "pattern %s", p)
	}

	_, err = os.Stat(cfg.Metrics.File)
	assert.NoError(t, err)
}

func TestRunRejectsInvalidConfigBeforeWriting(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*models.Config)
		param string
	}{
		{"unsupported scale", func(c *models.Config) { c.Generator.CustomerScale = 12_345 }, "CUSTOMER_SCALE"},
		{"zero batch size", func(c *models.Config) { c.Output.BatchSize = 0 }, "BATCH_FILE_SIZE"},
		{"pattern budget", func(c *models.Config) { c.Generator.Fraud.PatternAccounts[models.PatternCardTesting] = 5_000 }, "pattern_accounts"},
		{"customer shard reaches anchor shard", func(c *models.Config) {
			c.Generator.UseCase = models.UseCaseCustomer360
			c.Generator.ShardSize = 1
		}, "SHARD_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSettings(t, 10_000)
			tt.mod(cfg)

			_, err := New(PipelineConfig{Settings: cfg}).Run(context.Background())
			var cfgErr *models.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.param, cfgErr.Param)

			_, statErr := os.Stat(cfg.Output.Dir)
			assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
		})
	}
}

func TestRunRefusesExistingOutput(t *testing.T) {
	cfg := testSettings(t, 10_000)
	cfg.Generator.UseCase = models.UseCaseCustomer360
	stale := filepath.Join(cfg.Output.Dir, string(models.UseCaseCustomer360), "stale.parquet")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	_, err := New(PipelineConfig{Settings: cfg}).Run(context.Background())
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DATA_OUTPUT_DIR", cfgErr.Param)

	cfg.Output.Overwrite = true
	cfg.Generator.InteractionsPerCustomer = 0
	_, err = New(PipelineConfig{Settings: cfg}).Run(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestRunHonoursCancellation(t *testing.T) {
	cfg := testSettings(t, 10_000)
	cfg.Generator.UseCase = models.UseCaseCustomer360

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(PipelineConfig{Settings: cfg}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
