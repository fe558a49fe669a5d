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

package config

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"olap-graph-datagen-go/internal/models"
)

const (
	DefaultCustomerScale = 1_000_000
	DefaultSeed          = 42
	DefaultBatchSize     = 100_000
	DefaultShardSize     = 50_000
)

var (
	DefaultScaleTiers    = []int{10_000, 100_000, 1_000_000, 10_000_000, 100_000_000}
	DefaultReferenceTime = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
)

func Load() (*models.Config, error) {
	customerScale, err := getEnvInt("CUSTOMER_SCALE", DefaultCustomerScale)
	if err != nil {
		return nil, err
	}

	scaleTiers, err := getEnvIntList("SCALE_TIERS", DefaultScaleTiers)
	if err != nil {
		return nil, err
	}

	seed, err := getEnvUint("RANDOM_SEED", DefaultSeed)
	if err != nil {
		return nil, err
	}

	batchSize, err := getEnvInt("BATCH_FILE_SIZE", DefaultBatchSize)
	if err != nil {
		return nil, err
	}

	shardSize, err := getEnvInt("SHARD_SIZE", DefaultShardSize)
	if err != nil {
		return nil, err
	}

	parallelism, err := getEnvInt("GENERATION_PARALLELISM", runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	codec, err := models.ParseCodec(getEnvString("PARQUET_COMPRESSION", string(models.CodecSnappy)))
	if err != nil {
		return nil, err
	}

	useCase, err := models.ParseUseCase(getEnvString("USE_CASE", string(models.UseCaseBoth)))
	if err != nil {
		return nil, err
	}

	overwrite, err := getEnvBool("OVERWRITE_EXISTING_DATA", false)
	if err != nil {
		return nil, err
	}

	weights, err := getEnvSegmentWeights("SEGMENT_WEIGHTS")
	if err != nil {
		return nil, err
	}

	density, err := getEnvFloat("TRANSACTION_DENSITY", 1.0)
	if err != nil {
		return nil, err
	}

	interactions, err := getEnvFloat("INTERACTIONS_PER_CUSTOMER", 12)
	if err != nil {
		return nil, err
	}

	fixtures, err := getEnvBool("INCLUDE_FIXTURES", true)
	if err != nil {
		return nil, err
	}

	referenceTime, err := getEnvTime("REFERENCE_TIME", DefaultReferenceTime)
	if err != nil {
		return nil, err
	}

	maxFraudFraction, err := getEnvFloat("MAX_FRAUD_FRACTION", 0.2)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	verbose, err := getEnvBool("VERBOSE_LOGGING", false)
	if err != nil {
		return nil, err
	}

	fraud := models.DefaultFraudConfig()
	fraud.MaxFraudFraction = maxFraudFraction

	return &models.Config{
		Generator: models.GeneratorConfig{
			CustomerScale:           customerScale,
			ScaleTiers:              scaleTiers,
			Seed:                    seed,
			ShardSize:               shardSize,
			Parallelism:             parallelism,
			UseCase:                 useCase,
			SegmentWeights:          weights,
			TransactionDensity:      density,
			InteractionsPerCustomer: interactions,
			IncludeFixtures:         fixtures,
			ReferenceTime:           referenceTime,
			ProfileFile:             getEnvString("PROFILE_FILE", ""),
			Fraud:                   fraud,
		},
		Output: models.OutputConfig{
			Dir:         getEnvString("DATA_OUTPUT_DIR", "data"),
			BatchSize:   batchSize,
			Compression: codec,
			Overwrite:   overwrite,
		},
		Database: models.DatabaseConfig{
			Path:            getEnvString("MANIFEST_DB_PATH", "datagen.db"),
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: connMaxLifetime,
			PingTimeout:     pingTimeout,
		},
		Metrics: models.MetricsConfig{
			File: getEnvString("METRICS_FILE", ""),
		},
		Verbose: verbose,
	}, nil
}

// Validate rejects configurations that cannot produce a dataset. It runs
// before any directory or file is touched.
func Validate(cfg *models.Config) error {
	g := cfg.Generator
	if !containsInt(g.ScaleTiers, g.CustomerScale) {
		return models.NewConfigError("CUSTOMER_SCALE", g.CustomerScale, "unsupported scale, supported tiers are %v", g.ScaleTiers)
	}
	if g.ShardSize <= 0 {
		return models.NewConfigError("SHARD_SIZE", g.ShardSize, "must be positive")
	}
	if shards := (g.CustomerScale + g.ShardSize - 1) / g.ShardSize; g.IncludeFixtures &&
		g.UseCase.Includes(models.UseCaseCustomer360) && shards > models.AnchorShard {
		return models.NewConfigError("SHARD_SIZE", g.ShardSize,
			"%d customers need %d shards, anchors reserve shard %d; raise SHARD_SIZE or disable fixtures",
			g.CustomerScale, shards, models.AnchorShard)
	}
	if g.Parallelism <= 0 {
		return models.NewConfigError("GENERATION_PARALLELISM", g.Parallelism, "must be positive")
	}
	if cfg.Output.BatchSize <= 0 {
		return models.NewConfigError("BATCH_FILE_SIZE", cfg.Output.BatchSize, "must be positive")
	}
	if cfg.Output.Dir == "" {
		return models.NewConfigError("DATA_OUTPUT_DIR", cfg.Output.Dir, "must not be empty")
	}
	if err := ValidateSegmentWeights(g.SegmentWeights); err != nil {
		return err
	}
	if g.TransactionDensity <= 0 || math.IsNaN(g.TransactionDensity) {
		return models.NewConfigError("TRANSACTION_DENSITY", g.TransactionDensity, "must be positive")
	}
	if g.InteractionsPerCustomer < 0 || math.IsNaN(g.InteractionsPerCustomer) {
		return models.NewConfigError("INTERACTIONS_PER_CUSTOMER", g.InteractionsPerCustomer, "must not be negative")
	}
	if g.Fraud.MaxFraudFraction <= 0 || g.Fraud.MaxFraudFraction > 1 {
		return models.NewConfigError("MAX_FRAUD_FRACTION", g.Fraud.MaxFraudFraction, "must be in (0, 1]")
	}
	for _, p := range models.AllFraudPatterns {
		if g.Fraud.PatternAccounts[p] <= 0 {
			return models.NewConfigError("pattern_accounts."+string(p), g.Fraud.PatternAccounts[p], "must be positive")
		}
	}
	for _, name := range []string{models.FraudScaleSmall, models.FraudScaleMedium, models.FraudScaleLarge} {
		s, ok := g.Fraud.Scales[name]
		if !ok {
			return models.NewConfigError("fraud_scales."+name, nil, "profile is missing")
		}
		if s.Customers <= 0 || s.Accounts <= 0 || s.Devices <= 0 || s.Merchants <= 0 || s.Transactions < 0 {
			return models.NewConfigError("fraud_scales."+name, s, "pool sizes must be positive")
		}
	}
	return nil
}

func ValidateSegmentWeights(w models.SegmentWeights) error {
	sum := 0.0
	for _, s := range models.AllSegments {
		v, ok := w[s]
		if !ok {
			return models.NewConfigError("SEGMENT_WEIGHTS", w, "missing weight for %s", s)
		}
		if v < 0 || math.IsNaN(v) {
			return models.NewConfigError("SEGMENT_WEIGHTS", w, "weight for %s must not be negative", s)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-3 {
		return models.NewConfigError("SEGMENT_WEIGHTS", w, "weights sum to %.4f, expected 1", sum)
	}
	return nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, models.NewConfigError(key, value, "expected a duration such as 30s (%v)", err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvTime(key string, defaultValue time.Time) (time.Time, error) {
	if value := os.Getenv(key); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, models.NewConfigError(key, value, "expected RFC3339 timestamp")
		}
		return t.UTC(), nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.Atoi(strings.ReplaceAll(value, "_", ""))
		if err != nil {
			return 0, models.NewConfigError(key, value, "expected an integer")
		}
		return intValue, nil
	}
	return defaultValue, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	if value := os.Getenv(key); value != "" {
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, models.NewConfigError(key, value, "expected a non-negative integer")
		}
		return u, nil
	}
	return defaultValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, models.NewConfigError(key, value, "expected a number")
		}
		return f, nil
	}
	return defaultValue, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return false, models.NewConfigError(key, value, "expected a boolean")
		}
		return boolValue, nil
	}
	return defaultValue, nil
}

func getEnvIntList(key string, defaultValue []int) ([]int, error) {
	value := os.Getenv(key)
	if value == "" {
		return append([]int(nil), defaultValue...), nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(p), "_", ""))
		if err != nil || n <= 0 {
			return nil, models.NewConfigError(key, value, "expected comma separated positive integers")
		}
		out = append(out, n)
	}
	return out, nil
}

// getEnvSegmentWeights reads VIP,Premium,Standard,Basic weights in order.
func getEnvSegmentWeights(key string) (models.SegmentWeights, error) {
	value := os.Getenv(key)
	if value == "" {
		return models.DefaultSegmentWeights(), nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != len(models.AllSegments) {
		return nil, models.NewConfigError(key, value, "expected %d comma separated weights", len(models.AllSegments))
	}
	weights := make(models.SegmentWeights, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, models.NewConfigError(key, value, "weight %q is not a number", p)
		}
		weights[models.AllSegments[i]] = f
	}
	return weights, nil
}
