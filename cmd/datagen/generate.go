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

package main

import (
	"fmt"
	"time"

	"olap-graph-datagen-go/internal/common"
	"olap-graph-datagen-go/internal/config"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateFlags struct {
	customers   int
	seed        uint64
	batchSize   int
	shardSize   int
	parallelism int
	compression string
	useCase     string
	overwrite   bool
	noFixtures  bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the configured datasets",
	Long: `Generate writes Parquet batch files under <output-dir>/<use-case>/<table>/.
An existing non-empty dataset directory is refused unless --overwrite is set.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.IntVarP(&generateFlags.customers, "customers", "c", config.DefaultCustomerScale, "Customer scale tier (CUSTOMER_SCALE)")
	flags.Uint64Var(&generateFlags.seed, "seed", config.DefaultSeed, "Random seed (RANDOM_SEED)")
	flags.IntVar(&generateFlags.batchSize, "batch-size", config.DefaultBatchSize, "Rows per Parquet file (BATCH_FILE_SIZE)")
	flags.IntVar(&generateFlags.shardSize, "shard-size", config.DefaultShardSize, "Customers or accounts per shard (SHARD_SIZE)")
	flags.IntVarP(&generateFlags.parallelism, "parallelism", "p", 0, "Concurrent shards (GENERATION_PARALLELISM)")
	flags.StringVar(&generateFlags.compression, "compression", string(models.CodecSnappy), "snappy, gzip, lz4, zstd or none (PARQUET_COMPRESSION)")
	flags.StringVarP(&generateFlags.useCase, "use-case", "u", string(models.UseCaseBoth), "customer360, fraud or both (USE_CASE)")
	flags.BoolVar(&generateFlags.overwrite, "overwrite", false, "Replace existing output (OVERWRITE_EXISTING_DATA)")
	flags.BoolVar(&generateFlags.noFixtures, "no-fixtures", false, "Skip the anchor dataset (INCLUDE_FIXTURES=false)")

	rootCmd.AddCommand(generateCmd)
}

// applyGenerateFlags overlays the generate flags the user set.
func applyGenerateFlags(cmd *cobra.Command, cfg *models.Config) error {
	flags := cmd.Flags()
	if flags.Changed("customers") {
		cfg.Generator.CustomerScale = generateFlags.customers
	}
	if flags.Changed("seed") {
		cfg.Generator.Seed = generateFlags.seed
	}
	if flags.Changed("batch-size") {
		cfg.Output.BatchSize = generateFlags.batchSize
	}
	if flags.Changed("shard-size") {
		cfg.Generator.ShardSize = generateFlags.shardSize
	}
	if flags.Changed("parallelism") {
		cfg.Generator.Parallelism = generateFlags.parallelism
	}
	if flags.Changed("compression") {
		codec, err := models.ParseCodec(generateFlags.compression)
		if err != nil {
			return err
		}
		cfg.Output.Compression = codec
	}
	if flags.Changed("use-case") {
		useCase, err := models.ParseUseCase(generateFlags.useCase)
		if err != nil {
			return err
		}
		cfg.Generator.UseCase = useCase
	}
	if flags.Changed("overwrite") {
		cfg.Output.Overwrite = generateFlags.overwrite
	}
	if flags.Changed("no-fixtures") {
		cfg.Generator.IncludeFixtures = !generateFlags.noFixtures
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	if err := config.Validate(settings); err != nil {
		return err
	}

	services, err := common.InitializeServices(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer services.Close()

	p := pipeline.New(pipeline.PipelineConfig{
		Settings: settings,
		Manifest: services.DbService,
		Metrics:  services.Metrics,
	})
	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(summary)
	zap.L().Info("Run summary",
		zap.String("run_id", summary.RunId),
		zap.Duration("elapsed", summary.Elapsed))
	return nil
}

func printSummary(summary *pipeline.Summary) {
	common.PrintHeader("GENERATION SUMMARY", common.DefaultWidth)
	fmt.Printf("Run: %s\n", summary.RunId)

	var totalRows, totalBytes int64
	for i, t := range summary.Tables {
		fmt.Printf("%s %-12s %-22s %14s rows  %5d files  %10s\n",
			common.BoxPrefix(i == len(summary.Tables)-1),
			t.Dataset, t.Table,
			common.FormatCount(t.Rows), t.Files, common.FormatBytes(t.Bytes))
		totalRows += t.Rows
		totalBytes += t.Bytes
	}

	if len(summary.FraudInstances) > 0 {
		fmt.Println("\nInjected fraud patterns:")
		for i, p := range models.AllFraudPatterns {
			fmt.Printf("%s %-20s %6d\n", common.BoxPrefix(i == len(models.AllFraudPatterns)-1), p, summary.FraudInstances[p])
		}
	}

	common.PrintFooter(fmt.Sprintf("%s rows, %s in %s (%s)",
		common.FormatCount(totalRows), common.FormatBytes(totalBytes),
		summary.Elapsed.Round(time.Millisecond), common.FormatRate(totalRows, summary.Elapsed)), common.DefaultWidth)
}
