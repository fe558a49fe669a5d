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
	"fmt"
	"os"
	"path/filepath"

	"olap-graph-datagen-go/internal/models"

	"gopkg.in/yaml.v2"
)

// Profile is a YAML generation profile. Every field is optional and only
// the fields present override the environment configuration.
type Profile struct {
	SegmentWeights          map[string]float64           `yaml:"segment_weights"`
	TransactionDensity      *float64                     `yaml:"transaction_density"`
	InteractionsPerCustomer *float64                     `yaml:"interactions_per_customer"`
	FraudScales             map[string]models.FraudScale `yaml:"fraud_scales"`
	PatternAccounts         map[string]int               `yaml:"pattern_accounts"`
	MaxFraudFraction        *float64                     `yaml:"max_fraud_fraction"`
}

func LoadProfile(profileFile string) (*Profile, error) {
	var profilePath string
	if filepath.IsAbs(profileFile) {
		profilePath = profileFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		profilePath = filepath.Join(wd, profileFile)
	}

	data, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", profileFile, err)
	}

	var profile Profile
	if err := yaml.UnmarshalStrict(data, &profile); err != nil {
		return nil, models.NewConfigError("PROFILE_FILE", profileFile, "unable to parse: %v", err)
	}
	return &profile, nil
}

// Apply overlays the profile onto cfg. Values are range checked later by
// config.Validate; only names are resolved here.
func (p *Profile) Apply(cfg *models.Config) error {
	g := &cfg.Generator

	if len(p.SegmentWeights) > 0 {
		weights := make(models.SegmentWeights, len(p.SegmentWeights))
		for name, w := range p.SegmentWeights {
			s, err := models.ParseSegment(name)
			if err != nil {
				return err
			}
			weights[s] = w
		}
		g.SegmentWeights = weights
	}

	if p.TransactionDensity != nil {
		g.TransactionDensity = *p.TransactionDensity
	}
	if p.InteractionsPerCustomer != nil {
		g.InteractionsPerCustomer = *p.InteractionsPerCustomer
	}

	for name, scale := range p.FraudScales {
		switch name {
		case models.FraudScaleSmall, models.FraudScaleMedium, models.FraudScaleLarge:
		default:
			return models.NewConfigError("fraud_scales", name, "unknown profile, expected small, medium or large")
		}
		if g.Fraud.Scales == nil {
			g.Fraud.Scales = make(map[string]models.FraudScale)
		}
		g.Fraud.Scales[name] = scale
	}

	for name, n := range p.PatternAccounts {
		pattern, err := models.ParseFraudPattern(name)
		if err != nil {
			return err
		}
		if pattern == models.PatternNone {
			return models.NewConfigError("pattern_accounts", name, "not an injected pattern")
		}
		if g.Fraud.PatternAccounts == nil {
			g.Fraud.PatternAccounts = make(map[models.FraudPattern]int)
		}
		g.Fraud.PatternAccounts[pattern] = n
	}

	if p.MaxFraudFraction != nil {
		g.Fraud.MaxFraudFraction = *p.MaxFraudFraction
	}
	return nil
}

// ApplyProfileFile loads and applies cfg.Generator.ProfileFile when set.
func ApplyProfileFile(cfg *models.Config) error {
	if cfg.Generator.ProfileFile == "" {
		return nil
	}
	profile, err := LoadProfile(cfg.Generator.ProfileFile)
	if err != nil {
		return err
	}
	return profile.Apply(cfg)
}
