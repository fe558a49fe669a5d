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
	"sort"

	"olap-graph-datagen-go/internal/common"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/verify"

	"github.com/spf13/cobra"
)

var verifyFlags struct {
	rewrite       bool
	maxViolations int
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Read an output directory back and check its invariants",
	Long: `Verify checks referential integrity, the temporal invariants, value ranges
and the presence of every injected fraud pattern. With --rewrite every file is
also re-serialized and its row count compared.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyFlags.rewrite, "rewrite", false, "Re-serialize every file and compare row counts")
	verifyCmd.Flags().IntVar(&verifyFlags.maxViolations, "max-violations", 100, "Violations to keep in the report")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	report, err := verify.Dir(ctx, verify.Options{
		Root:          settings.Output.Dir,
		Rewrite:       verifyFlags.rewrite,
		Codec:         settings.Output.Compression,
		MaxViolations: verifyFlags.maxViolations,
	})
	if err != nil {
		return err
	}

	common.PrintHeader("VERIFICATION REPORT: "+settings.Output.Dir, common.DefaultWidth)
	tables := make([]string, 0, len(report.Rows))
	for t := range report.Rows {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for i, t := range tables {
		fmt.Printf("%s %-36s %14s rows\n", common.BoxPrefix(i == len(tables)-1), t, common.FormatCount(report.Rows[t]))
	}

	if len(report.Patterns) > 0 {
		fmt.Println("\nDetected fraud patterns:")
		for i, p := range models.AllFraudPatterns {
			fmt.Printf("%s %-20s %6d\n", common.BoxPrefix(i == len(models.AllFraudPatterns)-1), p, report.Patterns[p])
		}
	}
	if report.Rewritten > 0 {
		fmt.Printf("\nRe-serialized %s files\n", common.FormatCount(int64(report.Rewritten)))
	}

	if report.OK() {
		common.PrintFooter("OK: no violations", common.DefaultWidth)
		return nil
	}
	for i, v := range report.Violations {
		fmt.Printf("%s✗ %s\n", common.BoxDetailPrefix(i == len(report.Violations)-1 && report.Dropped == 0), v)
	}
	if report.Dropped > 0 {
		fmt.Printf("%s... and %d more\n", common.BoxDetailPrefix(true), report.Dropped)
	}
	total := len(report.Violations) + report.Dropped
	common.PrintFooter(fmt.Sprintf("FAILED: %d violations", total), common.DefaultWidth)
	return fmt.Errorf("verification found %d violations", total)
}
