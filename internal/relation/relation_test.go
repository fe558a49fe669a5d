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

package relation

import (
	"context"
	"testing"
	"time"

	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceTime = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

func testGeneratorConfig() models.GeneratorConfig {
	return models.GeneratorConfig{
		CustomerScale:           10_000,
		Seed:                    42,
		SegmentWeights:          models.DefaultSegmentWeights(),
		TransactionDensity:      1.0,
		InteractionsPerCustomer: 12,
		ReferenceTime:           referenceTime,
		Fraud:                   models.DefaultFraudConfig(),
	}
}

func TestTransactionsInvariants(t *testing.T) {
	cfg := testGeneratorConfig()
	factory := entity.NewFactory(cfg)
	catalog := entity.NewCatalog(factory.Products(5_000))
	products := map[string]models.Product{}
	for _, p := range catalog.Products {
		products[p.ProductId] = p
	}

	src := random.NewSource(cfg.Seed, "customer360", 0)
	stream := NewSynthesizer(cfg, catalog).Stream(src, 0)

	const customers = 20_000
	total, idle := 0, 0
	ids := map[string]bool{}
	for i := int64(0); i < customers; i++ {
		c := factory.Customer(src, i)
		require.NoError(t, c.Customer.Validate())
		bought := 0
		err := stream.Transactions(&c, func(txn models.Transaction) error {
			total++
			bought++
			require.NoError(t, txn.ValidateAgainst(c.Customer))
			require.False(t, txn.Timestamp.After(referenceTime))
			require.False(t, ids[txn.TransactionId], "duplicate id")
			ids[txn.TransactionId] = true

			p, ok := products[txn.ProductId]
			require.True(t, ok, "unknown product %s", txn.ProductId)
			require.False(t, c.Excludes(p.Category), "excluded category purchased")
			mult := AmountMultipliers[c.Segment]
			require.InDelta(t, p.Price*mult, txn.Amount, p.Price*mult*0.1+0.01)
			return nil
		})
		require.NoError(t, err)
		if bought == 0 {
			idle++
		}
	}

	perCustomer := float64(total) / customers
	assert.InDelta(t, 7.2, perCustomer, 0.35)
	// customers without purchases feed the low-engagement queries
	assert.Positive(t, idle)
}

func TestLowEngagementShare(t *testing.T) {
	cfg := testGeneratorConfig()
	catalog := entity.NewCatalog(entity.NewFactory(cfg).Products(100))
	stream := NewSynthesizer(cfg, catalog).Stream(random.NewSource(1, "low", 0), 0)

	vip := &entity.CustomerProfile{Customer: models.Customer{Segment: models.SegmentVIP}}
	low := 0
	const n = 20_000
	for i := 0; i < n; i++ {
		if c := stream.PurchaseCount(vip); c >= 1 && c <= 2 {
			low++
		}
	}
	assert.InDelta(t, 0.10, float64(low)/n, 0.015)
}

func TestInteractionSessions(t *testing.T) {
	cfg := testGeneratorConfig()
	factory := entity.NewFactory(cfg)
	catalog := entity.NewCatalog(factory.Products(1_000))
	src := random.NewSource(cfg.Seed, "customer360", 3)
	stream := NewSynthesizer(cfg, catalog).Stream(src, 3)

	sessions := map[string][]models.Interaction{}
	for i := int64(0); i < 500; i++ {
		c := factory.Customer(src, i)
		require.NoError(t, stream.Interactions(&c, func(in models.Interaction) error {
			require.False(t, in.Timestamp.Before(c.RegistrationDate))
			require.False(t, in.Timestamp.After(referenceTime))
			sessions[in.SessionId] = append(sessions[in.SessionId], in)
			return nil
		}))
	}

	require.NotEmpty(t, sessions)
	for id, events := range sessions {
		assert.LessOrEqual(t, len(events), maxSessionEvents, "session %s", id)
		for i := 1; i < len(events); i++ {
			assert.Equal(t, events[0].CustomerId, events[i].CustomerId)
			assert.Equal(t, events[0].Device, events[i].Device)
			assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
		}
	}
}

func TestFraudBaseAccounts(t *testing.T) {
	cfg := testGeneratorConfig()
	layout, err := entity.PlanFraud(cfg)
	require.NoError(t, err)
	pools, err := entity.NewFraudFactory(cfg).Pools(context.Background(), layout)
	require.NoError(t, err)

	accounts := map[string]int{}
	for i, a := range pools.Accounts {
		accounts[a.AccountId] = i
	}
	merchants := map[string]int{}
	for i, m := range pools.Merchants {
		merchants[m.MerchantId] = i
	}
	devices := map[string]int{}
	for i, d := range pools.Devices {
		devices[d.DeviceId] = i
	}

	stream := NewFraudSynthesizer(cfg, pools).Stream(random.NewSource(cfg.Seed, "fraud", 0), 0)
	txns := 0
	for i := 0; i < 2_000; i++ {
		err := stream.Account(i,
			func(u models.DeviceAccountUsage) error {
				assert.Less(t, devices[u.DeviceId], layout.Base.Devices)
				assert.False(t, u.FirstLogin.Before(pools.Accounts[i].OpenedAt))
				assert.LessOrEqual(t, u.FailedAttempts, int32(2))
				return nil
			},
			func(txn models.FraudTransaction) error {
				txns++
				require.NoError(t, txn.ValidateAgainst(pools.Accounts[i]))
				assert.Equal(t, models.PatternNone, txn.FraudPattern)
				assert.False(t, txn.IsFraudulent)
				assert.LessOrEqual(t, txn.FraudScore, 30.0)
				if txn.ToAccountId != "" {
					to, ok := accounts[txn.ToAccountId]
					require.True(t, ok)
					assert.Less(t, to, layout.Base.Accounts)
				}
				if txn.MerchantId != "" {
					m, ok := merchants[txn.MerchantId]
					require.True(t, ok)
					assert.Less(t, m, layout.Base.Merchants)
				}
				return nil
			})
		require.NoError(t, err)
	}
	assert.Positive(t, txns)
}
