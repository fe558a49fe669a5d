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

package entity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceTime = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

func testGeneratorConfig(scale int) models.GeneratorConfig {
	return models.GeneratorConfig{
		CustomerScale:  scale,
		Seed:           42,
		SegmentWeights: models.DefaultSegmentWeights(),
		ReferenceTime:  referenceTime,
		Fraud:          models.DefaultFraudConfig(),
	}
}

func TestCustomerInvariants(t *testing.T) {
	factory := NewFactory(testGeneratorConfig(10_000))
	src := random.NewSource(42, "customers", 0)

	counts := map[models.Segment]int{}
	emails := map[string]bool{}
	const n = 20_000
	for i := int64(0); i < n; i++ {
		c := factory.Customer(src, i)
		counts[c.Segment]++

		lo, hi := LTVBand(c.Segment)
		require.GreaterOrEqual(t, c.Ltv, lo)
		require.LessOrEqual(t, c.Ltv, hi)
		require.False(t, c.RegistrationDate.After(referenceTime))
		require.True(t, c.RegistrationDate.After(referenceTime.Add(-registrationWindow-time.Hour)))
		require.False(t, emails[c.Email], "duplicate email %s", c.Email)
		emails[c.Email] = true

		if len(c.ExcludedCategories) > 0 {
			assert.True(t, c.Segment.IsHighValue())
			assert.True(t, c.Excludes(models.CategoryElectronics))
		}
	}

	for s, w := range models.DefaultSegmentWeights() {
		assert.InDelta(t, w, float64(counts[s])/n, 0.02, "segment %s", s)
	}
}

func TestCustomerDeterministic(t *testing.T) {
	factory := NewFactory(testGeneratorConfig(10_000))
	a := factory.Customer(random.NewSource(42, "customers", 1), 50_000)
	b := factory.Customer(random.NewSource(42, "customers", 1), 50_000)
	assert.Equal(t, a, b)
}

func TestLTVBandsDoNotOverlap(t *testing.T) {
	prevMin := -1.0
	for i := len(models.AllSegments) - 1; i >= 0; i-- {
		lo, hi := LTVBand(models.AllSegments[i])
		assert.Greater(t, lo, prevMin)
		assert.Less(t, lo, hi)
		prevMin = hi
	}
}

func TestProducts(t *testing.T) {
	factory := NewFactory(testGeneratorConfig(10_000))
	products := factory.Products(2_000)
	require.Len(t, products, 2_000)

	catalog := NewCatalog(products)
	for _, c := range models.AllCategories {
		assert.NotEmpty(t, catalog.InCategory(c), "category %s", c)
	}
	for _, p := range products {
		spec := categories[p.Category]
		assert.GreaterOrEqual(t, p.Price, spec.Price.Min)
		assert.LessOrEqual(t, p.Price, spec.Price.Max)
		assert.Contains(t, spec.Brands, p.Brand)
	}
	assert.Equal(t, products, factory.Products(2_000))
}

func TestProductCount(t *testing.T) {
	assert.Equal(t, 10_000, ProductCount(100_000))
	assert.Equal(t, 10_000, ProductCount(1_000_000))
	assert.Equal(t, 25_000, ProductCount(10_000_000))
	assert.Equal(t, 50_000, ProductCount(100_000_000))
}

func TestPlanFraudDefaults(t *testing.T) {
	layout, err := PlanFraud(testGeneratorConfig(100_000))
	require.NoError(t, err)
	assert.Equal(t, models.FraudScaleSmall, layout.ScaleName)
	require.Len(t, layout.Patterns, len(models.AllFraudPatterns))

	prevEnd := layout.Base.Accounts
	for _, s := range layout.Patterns {
		assert.Equal(t, prevEnd, s.Accounts.Start, "slices must be contiguous")
		assert.Equal(t, 390, s.Accounts.Len())
		prevEnd = s.Accounts.End

		total := 0
		for _, g := range s.Groups {
			total += g
		}
		switch s.Pattern {
		case models.PatternAccountTakeover:
			assert.Equal(t, s.Accounts.Len(), total)
			assert.Equal(t, len(s.Groups), s.Devices.Len())
			for _, g := range s.Groups {
				assert.GreaterOrEqual(t, g, 15)
				assert.LessOrEqual(t, g, 20)
			}
		case models.PatternMoneyLaundering:
			for _, g := range s.Groups {
				assert.GreaterOrEqual(t, g, 3)
				assert.LessOrEqual(t, g, 8)
			}
		case models.PatternSyntheticIdentity:
			assert.Equal(t, s.Customers.Len(), total)
		case models.PatternCardTesting:
			assert.Equal(t, len(s.Groups)*CardTestingMerchants, s.Merchants.Len())
		case models.PatternMerchantCollusion:
			assert.Equal(t, len(s.Groups)*CollusionMerchants, s.Merchants.Len())
		}
	}
	assert.Equal(t, layout.Scale.Accounts, prevEnd)
}

func TestPlanFraudRejectsExhaustion(t *testing.T) {
	cfg := testGeneratorConfig(100_000)
	cfg.Fraud.PatternAccounts[models.PatternMoneyLaundering] = 5_000

	_, err := PlanFraud(cfg)
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "pattern_accounts", cfgErr.Param)

	cfg = testGeneratorConfig(100_000)
	small := cfg.Fraud.Scales[models.FraudScaleSmall]
	small.Devices = 10
	cfg.Fraud.Scales[models.FraudScaleSmall] = small
	_, err = PlanFraud(cfg)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "fraud_scales.small.devices", cfgErr.Param)

	cfg = testGeneratorConfig(100_000)
	cfg.Fraud.PatternAccounts[models.PatternAccountTakeover] = 25
	_, err = PlanFraud(cfg)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "pattern_accounts.account_takeover", cfgErr.Param)
}

func TestFraudPools(t *testing.T) {
	cfg := testGeneratorConfig(10_000)
	layout, err := PlanFraud(cfg)
	require.NoError(t, err)

	pools, err := NewFraudFactory(cfg).Pools(context.Background(), layout)
	require.NoError(t, err)
	require.Len(t, pools.Accounts, layout.Scale.Accounts)

	customers := map[string]models.FraudCustomer{}
	for _, c := range pools.Customers {
		customers[c.CustomerId] = c
	}
	for i, a := range pools.Accounts {
		owner, ok := customers[a.CustomerId]
		require.True(t, ok, "account %s has unknown owner", a.AccountId)
		require.False(t, a.OpenedAt.Before(owner.CreatedAt))
		if i >= layout.Base.Accounts {
			continue
		}
		idx := 0
		_, err := fmt.Sscanf(a.CustomerId, "cust_%d", &idx)
		require.NoError(t, err)
		assert.LessOrEqual(t, idx, layout.Base.Customers, "base account owned by reserved customer")
	}

	s := layout.Slice(models.PatternSyntheticIdentity)
	first := pools.Accounts[s.Accounts.Start]
	assert.Equal(t, pools.Customers[s.Customers.Start].CustomerId, first.CustomerId)
	assert.Equal(t, "acc_0000000001", pools.Accounts[0].AccountId)
	assert.Equal(t, "merch_00000001", pools.Merchants[0].MerchantId)
	assert.Equal(t, "cust_0000000001", pools.Customers[0].CustomerId)
	assert.Equal(t, "dev_0000000002", pools.Devices[1].DeviceId)
}
