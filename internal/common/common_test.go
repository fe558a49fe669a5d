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

package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"olap-graph-datagen-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestProfileApply(t *testing.T) {
	path := writeProfile(t, `
segment_weights:
  vip: 0.1
  premium: 0.2
  standard: 0.3
  basic: 0.4
transaction_density: 0.5
fraud_scales:
  small:
    customers: 2000
    accounts: 3000
    transactions: 10000
    devices: 1000
    merchants: 500
pattern_accounts:
  money_laundering: 120
max_fraud_fraction: 0.5
`)
	cfg := &models.Config{Generator: models.GeneratorConfig{
		SegmentWeights:     models.DefaultSegmentWeights(),
		TransactionDensity: 1,
		Fraud:              models.DefaultFraudConfig(),
		ProfileFile:        path,
	}}

	require.NoError(t, ApplyProfileFile(cfg))

	g := cfg.Generator
	assert.Equal(t, 0.1, g.SegmentWeights[models.SegmentVIP])
	assert.Equal(t, 0.4, g.SegmentWeights[models.SegmentBasic])
	assert.Equal(t, 0.5, g.TransactionDensity)
	assert.Equal(t, 3000, g.Fraud.Scales[models.FraudScaleSmall].Accounts)
	assert.Equal(t, 150_000, g.Fraud.Scales[models.FraudScaleMedium].Accounts)
	assert.Equal(t, 120, g.Fraud.PatternAccounts[models.PatternMoneyLaundering])
	assert.Equal(t, 390, g.Fraud.PatternAccounts[models.PatternCardTesting])
	assert.Equal(t, 0.5, g.Fraud.MaxFraudFraction)
}

func TestProfileRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"segment", "segment_weights:\n  gold: 1.0\n"},
		{"pattern", "pattern_accounts:\n  phishing: 10\n"},
		{"none pattern", "pattern_accounts:\n  none: 10\n"},
		{"scale", "fraud_scales:\n  huge:\n    customers: 1\n"},
		{"field", "unknown_field: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &models.Config{Generator: models.GeneratorConfig{
				Fraud:       models.DefaultFraudConfig(),
				ProfileFile: writeProfile(t, tt.body),
			}}
			err := ApplyProfileFile(cfg)
			require.Error(t, err)
			var cfgErr *models.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestApplyProfileFileWithoutProfile(t *testing.T) {
	cfg := &models.Config{}
	assert.NoError(t, ApplyProfileFile(cfg))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "2.0 MiB", FormatBytes(2*1024*1024))
	assert.Equal(t, "1,000 rows/s", FormatRate(2000, 2*time.Second))
	assert.Equal(t, "n/a", FormatRate(10, 0))
	assert.Equal(t, "│  ", BoxDetailPrefix(false))
	assert.Equal(t, "   ", BoxDetailPrefix(true))
}
