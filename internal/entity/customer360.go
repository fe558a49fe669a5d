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
	"fmt"
	"math"
	"strings"
	"time"

	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
)

const (
	registrationWindow = 3 * 365 * 24 * time.Hour
	launchWindow       = 3 * 365 * 24 * time.Hour
	// recencySkew > 1 favours recent registrations
	recencySkew = 1.25

	brandAffinityRate     = 0.30
	categoryExclusionRate = 0.20
)

type ltvBand struct {
	Min, Max float64
}

// ltvBands are non-overlapping so segment and value never disagree.
var ltvBands = map[models.Segment]ltvBand{
	models.SegmentVIP:      {10000, 50000},
	models.SegmentPremium:  {3000, 9999.99},
	models.SegmentStandard: {500, 2999.99},
	models.SegmentBasic:    {50, 499.99},
}

// LTVBand returns the inclusive lifetime value range of a segment.
func LTVBand(s models.Segment) (float64, float64) {
	b := ltvBands[s]
	return b.Min, b.Max
}

// CustomerProfile is a customer row plus the generation-time attributes that
// shape its relationships. Only Customer is serialized.
type CustomerProfile struct {
	models.Customer
	BrandAffinity      string
	ExcludedCategories []models.Category
}

// Excludes reports whether the customer never buys from the category.
func (p *CustomerProfile) Excludes(c models.Category) bool {
	for _, x := range p.ExcludedCategories {
		if x == c {
			return true
		}
	}
	return false
}

// Factory creates Customer 360 entities. It is safe for concurrent use;
// callers pass their own random source.
type Factory struct {
	seed          uint64
	weights       []float64
	referenceTime time.Time
	customerIDs   random.UUIDAllocator
	productIDs    random.UUIDAllocator
}

func NewFactory(cfg models.GeneratorConfig) *Factory {
	return &Factory{
		seed:          cfg.Seed,
		weights:       cfg.SegmentWeights.Vector(),
		referenceTime: cfg.ReferenceTime,
		customerIDs:   random.NewUUIDAllocator(cfg.Seed, "customer"),
		productIDs:    random.NewUUIDAllocator(cfg.Seed, "product"),
	}
}

// Customer builds the customer with the given global index.
func (f *Factory) Customer(src *random.Source, index int64) CustomerProfile {
	segment := models.AllSegments[src.WeightedIndex(f.weights)]
	faker := src.Faker()
	first, last := faker.FirstName(), faker.LastName()

	ago := time.Duration(src.Skewed(recencySkew) * float64(registrationWindow))
	if ago < time.Hour {
		ago = time.Hour
	}
	registered := models.Millis(f.referenceTime.Add(-ago))

	profile := CustomerProfile{
		Customer: models.Customer{
			CustomerId:       f.customerIDs.ID(index),
			Email:            fmt.Sprintf("%s.%s.%d@%s", emailPart(first), emailPart(last), index, faker.DomainName()),
			Name:             first + " " + last,
			Segment:          segment,
			Ltv:              f.ltv(src, segment),
			RegistrationDate: registered,
			CreatedAt:        registered,
		},
	}

	if src.Bernoulli(brandAffinityRate) {
		if segment.IsHighValue() {
			profile.BrandAffinity = random.Pick(src, premiumBrands)
		} else {
			profile.BrandAffinity = random.Pick(src, standardBrands)
		}
	}
	if segment.IsHighValue() && src.Bernoulli(categoryExclusionRate) {
		profile.ExcludedCategories = []models.Category{models.CategoryElectronics}
	}

	models.MustValid(profile.Customer)
	return profile
}

// ltv draws log-normally around the band's geometric centre and clamps.
func (f *Factory) ltv(src *random.Source, s models.Segment) float64 {
	band := ltvBands[s]
	mu := (math.Log(band.Min) + math.Log(band.Max)) / 2
	v := src.LogNormal(mu, 0.35)
	v = math.Max(band.Min, math.Min(band.Max, v))
	return models.Cents(v)
}

// Products builds the shared product pool. The pool is drawn from its own
// stream so it is identical for any shard layout.
func (f *Factory) Products(n int) []models.Product {
	src := random.NewSource(f.seed, "products", 0)
	weights := make([]float64, len(models.AllCategories))
	for i := range weights {
		weights[i] = 1
	}

	products := make([]models.Product, n)
	for i := 0; i < n; i++ {
		category := models.AllCategories[src.WeightedIndex(weights)]
		spec := categories[category]
		brand := random.Pick(src, spec.Brands)
		launched := models.Millis(f.referenceTime.Add(-time.Duration(src.Float64() * float64(launchWindow))))

		products[i] = models.MustValid(models.Product{
			ProductId:  f.productIDs.ID(int64(i)),
			Name:       fmt.Sprintf("%s %s Product %d", brand, category, i+1),
			Category:   category,
			Brand:      brand,
			Price:      models.Cents(src.Uniform(spec.Price.Min, spec.Price.Max)),
			LaunchDate: launched,
			CreatedAt:  launched,
		})
	}
	return products
}

func emailPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
