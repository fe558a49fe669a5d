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
	"testing"

	"olap-graph-datagen-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyGenerateFlags(t *testing.T) {
	flags := generateCmd.Flags()
	require.NoError(t, flags.Set("customers", "100000"))
	require.NoError(t, flags.Set("no-fixtures", "true"))
	require.NoError(t, flags.Set("compression", "zstd"))
	require.NoError(t, flags.Set("use-case", "fraud-detection"))

	cfg := &models.Config{
		Generator: models.GeneratorConfig{CustomerScale: 1_000_000, Seed: 42, IncludeFixtures: true, Parallelism: 3},
		Output:    models.OutputConfig{Compression: models.CodecSnappy, BatchSize: 100_000},
	}
	require.NoError(t, applyGenerateFlags(generateCmd, cfg))

	assert.Equal(t, 100_000, cfg.Generator.CustomerScale)
	assert.False(t, cfg.Generator.IncludeFixtures)
	assert.Equal(t, models.CodecZstd, cfg.Output.Compression)
	assert.Equal(t, models.UseCaseFraud, cfg.Generator.UseCase)
	// untouched flags keep the environment values
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
	assert.Equal(t, 3, cfg.Generator.Parallelism)
	assert.Equal(t, 100_000, cfg.Output.BatchSize)

	require.NoError(t, flags.Set("compression", "brotli"))
	err := applyGenerateFlags(generateCmd, cfg)
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "PARQUET_COMPRESSION", cfgErr.Param)
}
