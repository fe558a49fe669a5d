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

package models

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Generator GeneratorConfig
	Output    OutputConfig
	Database  DatabaseConfig
	Metrics   MetricsConfig
	Verbose   bool
}

// GeneratorConfig holds the knobs that shape the generated datasets
type GeneratorConfig struct {
	CustomerScale           int
	ScaleTiers              []int
	Seed                    uint64
	ShardSize               int
	Parallelism             int
	UseCase                 UseCase
	SegmentWeights          SegmentWeights
	TransactionDensity      float64
	InteractionsPerCustomer float64
	IncludeFixtures         bool
	ReferenceTime           time.Time
	ProfileFile             string
	Fraud                   FraudConfig
}

// OutputConfig holds batch file settings
type OutputConfig struct {
	Dir         string
	BatchSize   int
	Compression Codec
	Overwrite   bool
}

// DatabaseConfig holds manifest database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// MetricsConfig holds the optional Prometheus textfile target
type MetricsConfig struct {
	File string
}

// SegmentWeights maps each customer segment to its draw probability.
type SegmentWeights map[Segment]float64

// DefaultSegmentWeights returns the documented 8.3/16.6/32.2/42.9 split.
func DefaultSegmentWeights() SegmentWeights {
	return SegmentWeights{
		SegmentVIP:      0.083,
		SegmentPremium:  0.166,
		SegmentStandard: 0.322,
		SegmentBasic:    0.429,
	}
}

// Vector returns the weights in AllSegments order.
func (w SegmentWeights) Vector() []float64 {
	out := make([]float64, len(AllSegments))
	for i, s := range AllSegments {
		out[i] = w[s]
	}
	return out
}

// FraudScale sizes the fraud entity pools
type FraudScale struct {
	Customers    int `yaml:"customers"`
	Accounts     int `yaml:"accounts"`
	Transactions int `yaml:"transactions"`
	Devices      int `yaml:"devices"`
	Merchants    int `yaml:"merchants"`
}

const (
	FraudScaleSmall  = "small"
	FraudScaleMedium = "medium"
	FraudScaleLarge  = "large"
)

// FraudConfig holds the fraud pool profiles and injection budget
type FraudConfig struct {
	Scales           map[string]FraudScale
	PatternAccounts  map[FraudPattern]int
	MaxFraudFraction float64
}

func DefaultFraudConfig() FraudConfig {
	patterns := make(map[FraudPattern]int, len(AllFraudPatterns))
	for _, p := range AllFraudPatterns {
		patterns[p] = 390
	}
	return FraudConfig{
		Scales: map[string]FraudScale{
			FraudScaleSmall:  {Customers: 10_000, Accounts: 15_000, Transactions: 100_000, Devices: 5_000, Merchants: 2_000},
			FraudScaleMedium: {Customers: 100_000, Accounts: 150_000, Transactions: 1_000_000, Devices: 50_000, Merchants: 20_000},
			FraudScaleLarge:  {Customers: 1_000_000, Accounts: 1_500_000, Transactions: 10_000_000, Devices: 100_000, Merchants: 50_000},
		},
		PatternAccounts:  patterns,
		MaxFraudFraction: 0.2,
	}
}

// ScaleName selects the fraud profile for a customer scale.
func (f FraudConfig) ScaleName(customerScale int) string {
	switch {
	case customerScale <= 100_000:
		return FraudScaleSmall
	case customerScale <= 1_000_000:
		return FraudScaleMedium
	default:
		return FraudScaleLarge
	}
}

// ReservedAccounts is the total account budget of all injected patterns.
func (f FraudConfig) ReservedAccounts() int {
	total := 0
	for _, p := range AllFraudPatterns {
		total += f.PatternAccounts[p]
	}
	return total
}

// ConfigError reports an invalid configuration parameter. It is returned
// before any generation work begins.
type ConfigError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%v: %s", e.Param, e.Value, e.Reason)
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(param string, value any, format string, args ...any) *ConfigError {
	return &ConfigError{Param: param, Value: value, Reason: fmt.Sprintf(format, args...)}
}
