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
	"errors"
	"testing"
	"time"

	"olap-graph-datagen-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCustomerScale, cfg.Generator.CustomerScale)
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
	assert.Equal(t, models.CodecSnappy, cfg.Output.Compression)
	assert.Equal(t, models.UseCaseBoth, cfg.Generator.UseCase)
	assert.Equal(t, DefaultReferenceTime, cfg.Generator.ReferenceTime)
	assert.True(t, cfg.Generator.IncludeFixtures)
	assert.InDelta(t, 0.2, cfg.Generator.Fraud.MaxFraudFraction, 1e-9)
	require.NoError(t, Validate(cfg))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CUSTOMER_SCALE", "100_000")
	t.Setenv("RANDOM_SEED", "7")
	t.Setenv("PARQUET_COMPRESSION", "ZSTD")
	t.Setenv("USE_CASE", "fraud-detection")
	t.Setenv("SEGMENT_WEIGHTS", "0.1,0.2,0.3,0.4")
	t.Setenv("REFERENCE_TIME", "2024-01-01T00:00:00Z")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100_000, cfg.Generator.CustomerScale)
	assert.Equal(t, uint64(7), cfg.Generator.Seed)
	assert.Equal(t, models.CodecZstd, cfg.Output.Compression)
	assert.Equal(t, models.UseCaseFraud, cfg.Generator.UseCase)
	assert.InDelta(t, 0.1, cfg.Generator.SegmentWeights[models.SegmentVIP], 1e-9)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Generator.ReferenceTime)
	require.NoError(t, Validate(cfg))
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"CUSTOMER_SCALE":       "lots",
		"PARQUET_COMPRESSION":  "brotli",
		"USE_CASE":             "marketing",
		"SEGMENT_WEIGHTS":      "0.5,0.5",
		"INCLUDE_FIXTURES":     "maybe",
		"DB_CONN_MAX_LIFETIME": "forever",
		"DB_PING_TIMEOUT":      "5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			var cfgErr *models.ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, key, cfgErr.Param)
		})
	}
}

func TestValidateRejectsUnsupportedScale(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Generator.CustomerScale = 12345
	err = Validate(cfg)

	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "CUSTOMER_SCALE", cfgErr.Param)
	assert.Equal(t, 12345, cfgErr.Value)
}

func TestValidateKeepsCustomerShardsBelowAnchors(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Generator.CustomerScale = 10_000
	cfg.Generator.ShardSize = 1
	var cfgErr *models.ConfigError
	require.ErrorAs(t, Validate(cfg), &cfgErr)
	assert.Equal(t, "SHARD_SIZE", cfgErr.Param)

	// 9999 shards end at index 9998
	cfg.Generator.ScaleTiers = append(cfg.Generator.ScaleTiers, 9_999)
	cfg.Generator.CustomerScale = 9_999
	require.NoError(t, Validate(cfg))

	cfg.Generator.CustomerScale = 10_000
	cfg.Generator.IncludeFixtures = false
	require.NoError(t, Validate(cfg))

	cfg.Generator.IncludeFixtures = true
	cfg.Generator.UseCase = models.UseCaseFraud
	require.NoError(t, Validate(cfg))
}

func TestValidateSegmentWeights(t *testing.T) {
	require.NoError(t, ValidateSegmentWeights(models.DefaultSegmentWeights()))

	off := models.DefaultSegmentWeights()
	off[models.SegmentBasic] = 0.5
	assert.Error(t, ValidateSegmentWeights(off))

	missing := models.DefaultSegmentWeights()
	delete(missing, models.SegmentVIP)
	assert.Error(t, ValidateSegmentWeights(missing))
}

func TestValidatePatternBudget(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Generator.Fraud.PatternAccounts[models.PatternCardTesting] = 0
	var cfgErr *models.ConfigError
	require.ErrorAs(t, Validate(cfg), &cfgErr)
	assert.Equal(t, "pattern_accounts.card_testing", cfgErr.Param)
}
