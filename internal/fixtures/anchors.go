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
	"fmt"
	"strings"
	"time"

	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
)

// Shard is the file shard anchors are written under.
const Shard = models.AnchorShard

const (
	CustomersPerSegment = 10
	day                 = 24 * time.Hour
)

type seedProduct struct {
	Category models.Category
	Brand    string
	Count    int
	Min, Max float64
}

var seedProducts = []seedProduct{
	{models.CategoryElectronics, "Apple", 5, 500, 2000},
	{models.CategoryElectronics, "Samsung", 5, 400, 1500},
	{models.CategoryElectronics, "Sony", 5, 300, 1200},
	{models.CategoryClothing, "Nike", 5, 50, 300},
	{models.CategoryClothing, "Adidas", 5, 40, 250},
	{models.CategoryHome, "IKEA", 5, 50, 500},
	{models.CategoryHome, "Wayfair", 5, 60, 600},
	{models.CategoryBooks, "Penguin", 3, 15, 50},
	{models.CategorySports, "Nike", 4, 30, 200},
	{models.CategoryBeauty, "Loreal", 3, 20, 100},
}

// Anchors is a small hand-shaped Customer 360 dataset that guarantees the
// demo queries return rows regardless of scale or seed.
type Anchors struct {
	Customers    []models.Customer
	Products     []models.Product
	Transactions []models.Transaction
	Interactions []models.Interaction
}

type builder struct {
	src       *random.Source
	reference time.Time
	txnIDs    *random.ShardSequence
	anchors   Anchors

	customers map[models.Segment][]models.Customer
	products  map[string][]models.Product
}

// Build creates the anchor dataset for cfg. Output depends only on the
// seed and reference time.
func Build(cfg models.GeneratorConfig) *Anchors {
	b := &builder{
		src:       random.NewSource(cfg.Seed, "fixtures", 0),
		reference: cfg.ReferenceTime,
		txnIDs:    random.NewUUIDAllocator(cfg.Seed, "fixture_transaction").Shard(Shard),
		customers: make(map[models.Segment][]models.Customer),
		products:  make(map[string][]models.Product),
	}
	b.buildCustomers(random.NewUUIDAllocator(cfg.Seed, "fixture_customer"))
	b.buildProducts(random.NewUUIDAllocator(cfg.Seed, "fixture_product"))
	b.buildTransactions()
	b.buildInteractions(
		random.NewUUIDAllocator(cfg.Seed, "fixture_interaction").Shard(Shard),
		random.NewUUIDAllocator(cfg.Seed, "fixture_session").Shard(Shard),
	)
	return &b.anchors
}

// Email returns the address of the i-th anchor customer of a segment.
func Email(s models.Segment, i int) string {
	return fmt.Sprintf("seed_%s_%d@example.com", strings.ToLower(string(s)), i)
}

func (b *builder) buildCustomers(ids random.UUIDAllocator) {
	var index int64
	for _, segment := range models.AllSegments {
		lo, hi := entity.LTVBand(segment)
		for i := 0; i < CustomersPerSegment; i++ {
			registered := models.Millis(b.reference.Add(-time.Duration(b.src.IntRange(120, 365)) * day))
			c := models.MustValid(models.Customer{
				CustomerId:       ids.ID(index),
				Email:            Email(segment, i),
				Name:             fmt.Sprintf("Seed %s Customer %d", segment, i),
				Segment:          segment,
				Ltv:              models.Cents(b.src.Uniform(lo, hi)),
				RegistrationDate: registered,
				CreatedAt:        registered,
			})
			index++
			b.customers[segment] = append(b.customers[segment], c)
			b.anchors.Customers = append(b.anchors.Customers, c)
		}
	}
}

func productKey(c models.Category, brand string) string {
	return string(c) + "/" + brand
}

func (b *builder) buildProducts(ids random.UUIDAllocator) {
	var index int64
	for _, sp := range seedProducts {
		for i := 0; i < sp.Count; i++ {
			launched := models.Millis(b.reference.Add(-time.Duration(b.src.IntRange(400, 730)) * day))
			p := models.MustValid(models.Product{
				ProductId:  ids.ID(index),
				Name:       fmt.Sprintf("%s %s Seed %d", sp.Brand, sp.Category, i+1),
				Category:   sp.Category,
				Brand:      sp.Brand,
				Price:      models.Cents(b.src.Uniform(sp.Min, sp.Max)),
				LaunchDate: launched,
				CreatedAt:  launched,
			})
			index++
			key := productKey(sp.Category, sp.Brand)
			b.products[key] = append(b.products[key], p)
			b.anchors.Products = append(b.anchors.Products, p)
		}
	}
}

func (b *builder) brand(c models.Category, brand string) []models.Product {
	return b.products[productKey(c, brand)]
}

// buy records a completed purchase daysAgo days before the reference time.
// A zero daysAgo picks a day within the last quarter.
func (b *builder) buy(c models.Customer, p models.Product, daysAgo int) {
	if daysAgo == 0 {
		daysAgo = b.src.IntRange(1, 90)
	}
	b.buyAt(c, p, b.reference.Add(-time.Duration(daysAgo)*day+time.Duration(b.src.IntN(12*60))*time.Minute))
}

func (b *builder) buyAt(c models.Customer, p models.Product, ts time.Time) {
	ts = models.Millis(ts)
	if ts.Before(c.RegistrationDate) {
		ts = c.RegistrationDate
	}
	t := models.MustValid(models.Transaction{
		TransactionId: b.txnIDs.Next(),
		CustomerId:    c.CustomerId,
		ProductId:     p.ProductId,
		Amount:        models.Cents(p.Price * b.src.Uniform(0.9, 1.3)),
		Quantity:      int32(b.src.IntRange(1, 2)),
		Timestamp:     ts,
		Channel:       random.Pick(b.src, models.AllChannels),
		Status:        models.StatusCompleted,
	})
	b.anchors.Transactions = append(b.anchors.Transactions, t)
}

func (b *builder) buildTransactions() {
	vip := b.customers[models.SegmentVIP]
	premium := b.customers[models.SegmentPremium]
	standard := b.customers[models.SegmentStandard]
	basic := b.customers[models.SegmentBasic]

	apple := b.brand(models.CategoryElectronics, "Apple")
	samsung := b.brand(models.CategoryElectronics, "Samsung")
	sony := b.brand(models.CategoryElectronics, "Sony")
	nike := b.brand(models.CategoryClothing, "Nike")
	adidas := b.brand(models.CategoryClothing, "Adidas")
	ikea := b.brand(models.CategoryHome, "IKEA")
	wayfair := b.brand(models.CategoryHome, "Wayfair")
	penguin := b.brand(models.CategoryBooks, "Penguin")
	nikeSports := b.brand(models.CategorySports, "Nike")
	loreal := b.brand(models.CategoryBeauty, "Loreal")

	// brand loyalty: five VIPs buy three Apple products each
	for _, c := range vip[:5] {
		for _, p := range apple[:3] {
			b.buy(c, p, b.src.IntRange(10, 60))
		}
	}

	// collaborative filtering: overlapping Samsung purchases
	b.buy(vip[0], samsung[0], 0)
	b.buy(vip[1], samsung[0], 0)
	b.buy(vip[1], samsung[1], 0)
	b.buy(vip[2], samsung[1], 0)
	b.buy(vip[3], samsung[1], 0)
	b.buy(vip[3], samsung[2], 0)

	// frequently bought together
	for _, c := range premium[:5] {
		for _, p := range sony[:b.src.IntRange(2, 3)] {
			b.buy(c, p, 0)
		}
	}

	// category expansion from Electronics
	for _, c := range vip[:3] {
		b.buy(c, nike[0], 0)
		b.buy(c, ikea[0], 0)
	}

	// category gap: high-value customers who never buy Electronics
	for _, c := range append(append([]models.Customer{}, vip[8:10]...), premium[8:10]...) {
		b.buy(c, random.Pick(b.src, nike), 0)
		b.buy(c, random.Pick(b.src, ikea), 0)
	}

	// 7-day baskets
	for _, c := range standard[:5] {
		base := b.reference.Add(-time.Duration(b.src.IntRange(30, 60)) * day)
		for i, p := range random.Sample(b.src, adidas, 3) {
			b.buyAt(c, p, base.Add(time.Duration(2*i)*day))
		}
	}

	// 2-hop recommendation chains C0-P0-C1-P1-C2-P2-C3. Low-engagement and
	// category-gap customers stay out of the pool.
	pool := append(append(append([]models.Customer{}, vip[:5]...), premium[:5]...), standard...)
	var all []models.Product
	for _, sp := range seedProducts {
		if sp.Category == models.CategoryElectronics {
			continue
		}
		all = append(all, b.brand(sp.Category, sp.Brand)...)
	}
	for chain := 0; chain < 5; chain++ {
		cs := random.Sample(b.src, pool, 4)
		ps := random.Sample(b.src, all, 3)
		for hop := 0; hop < 3; hop++ {
			b.buy(cs[hop], ps[hop], 0)
			b.buy(cs[hop+1], ps[hop], 0)
		}
	}

	// low engagement: VIPs with one or two purchases
	electronics := append(append([]models.Product{}, apple...), samsung...)
	for _, c := range vip[5:8] {
		for _, p := range random.Sample(b.src, electronics, b.src.IntRange(1, 2)) {
			b.buy(c, p, 0)
		}
	}

	// cross-category diversity
	for _, c := range premium[5:8] {
		for _, products := range [][]models.Product{apple, nike, penguin, nikeSports, loreal} {
			b.buy(c, random.Pick(b.src, products), 0)
		}
	}

	// every segment purchases
	for _, c := range basic {
		b.buy(c, random.Pick(b.src, wayfair), 0)
		b.buy(c, random.Pick(b.src, adidas), 0)
	}
}

var anchorInteractionTypes = []models.InteractionType{
	models.InteractionView, models.InteractionClick, models.InteractionAddToCart,
}

func (b *builder) buildInteractions(ids, sessions *random.ShardSequence) {
	for _, c := range b.anchors.Customers {
		session := sessions.Next()
		n := b.src.IntRange(5, 10)
		ts := c.RegistrationDate.Add(time.Duration(b.src.Float64() * float64(b.reference.Sub(c.RegistrationDate)/2)))
		for i := 0; i < n; i++ {
			ts = ts.Add(time.Duration(b.src.IntRange(5, 600)) * time.Second)
			b.anchors.Interactions = append(b.anchors.Interactions, models.MustValid(models.Interaction{
				InteractionId: ids.Next(),
				CustomerId:    c.CustomerId,
				ProductId:     random.Pick(b.src, b.anchors.Products).ProductId,
				Type:          random.Pick(b.src, anchorInteractionTypes),
				Timestamp:     models.Millis(ts),
				Duration:      int32(b.src.IntRange(10, 300)),
				Device:        random.Pick(b.src, models.AllDeviceKinds),
				SessionId:     session,
			}))
		}
	}
}
