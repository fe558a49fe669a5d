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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"olap-graph-datagen-go/internal/common"
	"olap-graph-datagen-go/internal/config"
	"olap-graph-datagen-go/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootFlags struct {
	envFile     string
	profile     string
	manifest    string
	metricsFile string
	outputDir   string
	verbose     bool
}

var (
	settings      *models.Config
	loggerCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "datagen",
	Short: "Synthetic Customer 360 and fraud datasets as Parquet batch files",
	Long: `datagen generates deterministic synthetic datasets for the ClickHouse and
PuppyGraph demo:

  customer360   customers, products, transactions, interactions
  fraud         customers, accounts, devices, merchants, fraud transactions
                and device usage with injected fraud topologies

Configuration comes from the environment (and .env), an optional YAML
profile and command line flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		loggerCleanup()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.envFile, "env-file", "", "Additional env file to load")
	flags.StringVar(&rootFlags.profile, "profile", "", "YAML generation profile (PROFILE_FILE)")
	flags.StringVar(&rootFlags.manifest, "manifest", "", "SQLite run manifest path (MANIFEST_DB_PATH)")
	flags.StringVar(&rootFlags.metricsFile, "metrics-file", "", "Prometheus textfile to write after a run (METRICS_FILE)")
	flags.StringVarP(&rootFlags.outputDir, "output-dir", "o", "", "Output root directory (DATA_OUTPUT_DIR)")
	flags.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Debug logging (VERBOSE_LOGGING)")
}

// loadSettings resolves env, profile and flags into settings and starts the
// logger. Only flags the user actually set override the environment.
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := common.LoadEnvFile(rootFlags.envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Generator.ProfileFile = rootFlags.profile
	}
	if err := common.ApplyProfileFile(cfg); err != nil {
		return err
	}
	if flags.Changed("manifest") {
		cfg.Database.Path = rootFlags.manifest
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.File = rootFlags.metricsFile
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = rootFlags.outputDir
	}
	if flags.Changed("verbose") {
		cfg.Verbose = rootFlags.verbose
	}
	if err := applyGenerateFlags(cmd, cfg); err != nil {
		return err
	}

	_, cleanup := common.InitializeLogger(cfg.Verbose)
	loggerCleanup = cleanup
	settings = cfg
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM so workers stop and the
// run is recorded as failed.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var cfgErr *models.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			loggerCleanup()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		zap.L().Error("datagen failed", zap.Error(err))
		loggerCleanup()
		os.Exit(1)
	}
}
