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
	"olap-graph-datagen-go/internal/models"

	"github.com/spf13/cobra"
)

var runsFlags struct {
	limit int
	runId string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs or show the tables of one run",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsFlags.limit, "limit", "n", 20, "Number of runs to list")
	runsCmd.Flags().StringVar(&runsFlags.runId, "run", "", "Show per-table counts of one run")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dbService, err := common.InitializeDatabaseOnly(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbService.Close()

	if runsFlags.runId != "" {
		run, err := dbService.GetRun(ctx, runsFlags.runId)
		if err != nil {
			return err
		}
		counts, err := dbService.GetTableCounts(ctx, run.Id)
		if err != nil {
			return err
		}
		printRun(*run)
		for i, c := range counts {
			fmt.Printf("%s %-12s %-22s %14s rows  %5d files  %10s\n",
				common.BoxPrefix(i == len(counts)-1),
				c.Dataset, c.Table, common.FormatCount(c.Rows), c.Files, common.FormatBytes(c.Bytes))
		}
		return nil
	}

	runs, err := dbService.ListRuns(ctx, runsFlags.limit)
	if err != nil {
		return err
	}
	common.PrintHeader("RECORDED RUNS", common.WideWidth)
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
	}
	for _, run := range runs {
		printRun(run)
	}
	common.PrintFooter(fmt.Sprintf("%d runs", len(runs)), common.WideWidth)
	return nil
}

func printRun(run models.Run) {
	fmt.Printf("\n┌─ Run %s [%s]\n", run.Id, run.Status)
	fmt.Printf("│  Started: %s  Elapsed: %s\n",
		run.StartedAt.Format("2006-01-02 15:04:05"),
		(time.Duration(run.ElapsedMs) * time.Millisecond).String())
	fmt.Printf("│  Customers: %s  Seed: %d  Use case: %s  Codec: %s\n",
		common.FormatCount(int64(run.CustomerScale)), run.Seed, run.UseCase, run.Compression)
	fmt.Printf("│  Output: %s\n", run.OutputDir)
	if run.Error != "" {
		fmt.Printf("│  Error: %s\n", run.Error)
	}
	common.PrintBoxSeparator(78)
}
