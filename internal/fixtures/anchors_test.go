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

package fixtures

import (
	"testing"
	"time"

	"olap-graph-datagen-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() models.GeneratorConfig {
	return models.GeneratorConfig{
		Seed:          42,
		ReferenceTime: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
}

type index struct {
	customers map[string]models.Customer
	products  map[string]models.Product
	byEmail   map[string]models.Customer
	purchases map[string][]models.Transaction
}

func buildIndex(a *Anchors) index {
	ix := index{
		customers: make(map[string]models.Customer),
		products:  make(map[string]models.Product),
		byEmail:   make(map[string]models.Customer),
		purchases: make(map[string][]models.Transaction),
	}
	for _, c := range a.Customers {
		ix.customers[c.CustomerId] = c
		ix.byEmail[c.Email] = c
	}
	for _, p := range a.Products {
		ix.products[p.ProductId] = p
	}
	for _, t := range a.Transactions {
		ix.purchases[t.CustomerId] = append(ix.purchases[t.CustomerId], t)
	}
	return ix
}

func TestBuildShape(t *testing.T) {
	a := Build(testConfig())
	ix := buildIndex(a)

	assert.Len(t, a.Customers, CustomersPerSegment*len(models.AllSegments))
	assert.Len(t, a.Products, 45)
	assert.Len(t, ix.byEmail, len(a.Customers), "anchor emails must be unique")
	assert.Contains(t, ix.byEmail, "seed_vip_0@example.com")
	assert.Contains(t, ix.byEmail, "seed_basic_9@example.com")

	for _, c := range a.Customers {
		assert.NotEmpty(t, ix.purchases[c.CustomerId], "every anchor customer purchases")
	}
}

func TestBuildInvariants(t *testing.T) {
	cfg := testConfig()
	a := Build(cfg)
	ix := buildIndex(a)

	for _, txn := range a.Transactions {
		c, ok := ix.customers[txn.CustomerId]
		require.True(t, ok, "dangling customer %s", txn.CustomerId)
		_, ok = ix.products[txn.ProductId]
		require.True(t, ok, "dangling product %s", txn.ProductId)
		require.NoError(t, txn.ValidateAgainst(c))
		assert.False(t, txn.Timestamp.After(cfg.ReferenceTime))
	}
	for _, i := range a.Interactions {
		c, ok := ix.customers[i.CustomerId]
		require.True(t, ok)
		_, ok = ix.products[i.ProductId]
		require.True(t, ok)
		assert.False(t, i.Timestamp.Before(c.RegistrationDate))
		assert.False(t, i.Timestamp.After(cfg.ReferenceTime))
	}
}

func TestBuildQueryPatterns(t *testing.T) {
	a := Build(testConfig())
	ix := buildIndex(a)

	brandCount := func(email, brand string, category models.Category) int {
		n := 0
		for _, txn := range ix.purchases[ix.byEmail[email].CustomerId] {
			p := ix.products[txn.ProductId]
			if p.Brand == brand && p.Category == category {
				n++
			}
		}
		return n
	}

	for i := 0; i < 5; i++ {
		assert.GreaterOrEqual(t, brandCount(Email(models.SegmentVIP, i), "Apple", models.CategoryElectronics), 3)
	}

	for i := 5; i < 8; i++ {
		n := len(ix.purchases[ix.byEmail[Email(models.SegmentVIP, i)].CustomerId])
		assert.True(t, n >= 1 && n <= 2, "low engagement VIP %d has %d purchases", i, n)
	}

	for _, s := range []models.Segment{models.SegmentVIP, models.SegmentPremium} {
		for i := 8; i < 10; i++ {
			for _, txn := range ix.purchases[ix.byEmail[Email(s, i)].CustomerId] {
				assert.NotEqual(t, models.CategoryElectronics, ix.products[txn.ProductId].Category)
			}
		}
	}

	for i := 0; i < 5; i++ {
		var adidas []time.Time
		for _, txn := range ix.purchases[ix.byEmail[Email(models.SegmentStandard, i)].CustomerId] {
			if ix.products[txn.ProductId].Brand == "Adidas" {
				adidas = append(adidas, txn.Timestamp)
			}
		}
		require.GreaterOrEqual(t, len(adidas), 3)
		assert.LessOrEqual(t, adidas[2].Sub(adidas[0]), 7*24*time.Hour)
	}

	for i := 5; i < 8; i++ {
		categories := make(map[models.Category]bool)
		for _, txn := range ix.purchases[ix.byEmail[Email(models.SegmentPremium, i)].CustomerId] {
			categories[ix.products[txn.ProductId].Category] = true
		}
		assert.GreaterOrEqual(t, len(categories), 4)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, b := Build(testConfig()), Build(testConfig())
	assert.Equal(t, a, b)

	other := testConfig()
	other.Seed = 7
	c := Build(other)
	assert.NotEqual(t, a.Customers[0].CustomerId, c.Customers[0].CustomerId)
}
