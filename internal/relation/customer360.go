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
	"time"

	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
)

const (
	lowEngagementRate = 0.10
	brandPickRate     = 0.60
	followUpRate      = 0.05
	recencySkew       = 1.25
	maxSessionEvents  = 8
)

// PurchaseMeans are the default Poisson means per segment.
var PurchaseMeans = map[models.Segment]float64{
	models.SegmentVIP:      18,
	models.SegmentPremium:  12,
	models.SegmentStandard: 7,
	models.SegmentBasic:    3.5,
}

// AmountMultipliers scale list price by segment.
var AmountMultipliers = map[models.Segment]float64{
	models.SegmentVIP:      1.30,
	models.SegmentPremium:  1.15,
	models.SegmentStandard: 1.00,
	models.SegmentBasic:    0.90,
}

var (
	channelWeights     = []float64{0.45, 0.40, 0.15}
	statusWeights      = []float64{0.90, 0.03, 0.04, 0.03}
	interactionWeights = []float64{0.45, 0.25, 0.12, 0.06, 0.05, 0.07}
	deviceWeights      = []float64{0.45, 0.45, 0.10}
)

// Synthesizer derives transactions and interactions for Customer 360
// customers from the shared product catalog.
type Synthesizer struct {
	catalog          *entity.Catalog
	referenceTime    time.Time
	density          float64
	interactionsMean float64
	categoryWeights  []float64
	txnAlloc         random.UUIDAllocator
	interactionAlloc random.UUIDAllocator
	sessionAlloc     random.UUIDAllocator
}

func NewSynthesizer(cfg models.GeneratorConfig, catalog *entity.Catalog) *Synthesizer {
	return &Synthesizer{
		catalog:          catalog,
		referenceTime:    cfg.ReferenceTime,
		density:          cfg.TransactionDensity,
		interactionsMean: cfg.InteractionsPerCustomer,
		categoryWeights:  entity.CategoryWeights(),
		txnAlloc:         random.NewUUIDAllocator(cfg.Seed, "transaction"),
		interactionAlloc: random.NewUUIDAllocator(cfg.Seed, "interaction"),
		sessionAlloc:     random.NewUUIDAllocator(cfg.Seed, "session"),
	}
}

// Stream is the per-shard view of a Synthesizer. It must not be shared
// between goroutines.
type Stream struct {
	*Synthesizer
	src            *random.Source
	txnIDs         *random.ShardSequence
	interactionIDs *random.ShardSequence
	sessionIDs     *random.ShardSequence
}

func (s *Synthesizer) Stream(src *random.Source, shard int) *Stream {
	return &Stream{
		Synthesizer:    s,
		src:            src,
		txnIDs:         s.txnAlloc.Shard(shard),
		interactionIDs: s.interactionAlloc.Shard(shard),
		sessionIDs:     s.sessionAlloc.Shard(shard),
	}
}

// PurchaseCount draws how many primary purchases a customer makes.
func (st *Stream) PurchaseCount(c *entity.CustomerProfile) int {
	if c.Segment.IsHighValue() && st.src.Bernoulli(lowEngagementRate) {
		return st.src.IntRange(1, 2)
	}
	return st.src.Poisson(PurchaseMeans[c.Segment] * st.density)
}

// Transactions emits the purchases of one customer. A customer may have
// none.
func (st *Stream) Transactions(c *entity.CustomerProfile, emit func(models.Transaction) error) error {
	n := st.PurchaseCount(c)
	for i := 0; i < n; i++ {
		product, ok := st.pickProduct(c)
		if !ok {
			return nil
		}
		ts := st.timestamp(c.RegistrationDate)
		txn := st.transaction(c, product, ts)
		if err := emit(txn); err != nil {
			return err
		}

		if !st.src.Bernoulli(followUpRate) {
			continue
		}
		follow, ok := st.pickFollowUp(c, product.Category)
		if !ok {
			continue
		}
		later := ts.Add(time.Duration(st.src.IntRange(5, 120)) * time.Minute)
		if later.After(st.referenceTime) {
			later = st.referenceTime
		}
		if err := emit(st.transaction(c, follow, models.Millis(later))); err != nil {
			return err
		}
	}
	return nil
}

func (st *Stream) transaction(c *entity.CustomerProfile, p models.Product, ts time.Time) models.Transaction {
	amount := models.Cents(p.Price * AmountMultipliers[c.Segment] * st.src.Uniform(0.9, 1.1))
	if amount < 0.01 {
		amount = 0.01
	}
	return models.MustValid(models.Transaction{
		TransactionId: st.txnIDs.Next(),
		CustomerId:    c.CustomerId,
		ProductId:     p.ProductId,
		Amount:        amount,
		Quantity:      int32(st.src.IntRange(1, 3)),
		Timestamp:     ts,
		Channel:       models.AllChannels[st.src.WeightedIndex(channelWeights)],
		Status:        models.AllTransactionStatuses[st.src.WeightedIndex(statusWeights)],
	})
}

// timestamp falls between registration and the reference time, skewed
// toward the present.
func (st *Stream) timestamp(registered time.Time) time.Time {
	window := st.referenceTime.Sub(registered)
	ts := st.referenceTime.Add(-time.Duration(st.src.Skewed(recencySkew) * float64(window)))
	if ts.Before(registered) {
		ts = registered
	}
	return models.Millis(ts)
}

// pickProduct prefers the customer's brand and otherwise draws a category
// by weight, never from an excluded category.
func (st *Stream) pickProduct(c *entity.CustomerProfile) (models.Product, bool) {
	if c.BrandAffinity != "" && st.src.Bernoulli(brandPickRate) {
		var allowed [][]int
		for _, cat := range models.AllCategories {
			idx := st.catalog.BrandCategories(c.BrandAffinity)[cat]
			if len(idx) > 0 && !c.Excludes(cat) {
				allowed = append(allowed, idx)
			}
		}
		if len(allowed) > 0 {
			idx := random.Pick(st.src, allowed)
			return st.catalog.Products[random.Pick(st.src, idx)], true
		}
	}
	return st.pickByCategory(c, st.categoryWeights)
}

func (st *Stream) pickByCategory(c *entity.CustomerProfile, base []float64) (models.Product, bool) {
	weights := make([]float64, len(base))
	total := 0.0
	for i, cat := range models.AllCategories {
		if !c.Excludes(cat) && len(st.catalog.InCategory(cat)) > 0 {
			weights[i] = base[i]
			total += base[i]
		}
	}
	if total == 0 {
		return models.Product{}, false
	}
	cat := models.AllCategories[st.src.WeightedIndex(weights)]
	return st.catalog.Products[random.Pick(st.src, st.catalog.InCategory(cat))], true
}

func (st *Stream) pickFollowUp(c *entity.CustomerProfile, bought models.Category) (models.Product, bool) {
	targets := entity.CrossCategories(bought)
	if len(targets) == 0 {
		return models.Product{}, false
	}
	weights := make([]float64, len(models.AllCategories))
	for i, cat := range models.AllCategories {
		for _, t := range targets {
			if t == cat {
				weights[i] = 1
			}
		}
	}
	return st.pickByCategory(c, weights)
}

// Interactions emits browsing sessions of one to eight adjacent events.
func (st *Stream) Interactions(c *entity.CustomerProfile, emit func(models.Interaction) error) error {
	remaining := st.src.Poisson(st.interactionsMean)
	for remaining > 0 {
		size := st.src.IntRange(1, min(maxSessionEvents, remaining))
		remaining -= size

		session := st.sessionIDs.Next()
		device := models.AllDeviceKinds[st.src.WeightedIndex(deviceWeights)]
		ts := st.timestamp(c.RegistrationDate)
		for i := 0; i < size; i++ {
			product, ok := st.pickByCategory(c, st.categoryWeights)
			if !ok {
				return nil
			}
			kind := models.AllInteractionTypes[st.src.WeightedIndex(interactionWeights)]
			if err := emit(models.MustValid(models.Interaction{
				InteractionId: st.interactionIDs.Next(),
				CustomerId:    c.CustomerId,
				ProductId:     product.ProductId,
				Type:          kind,
				Timestamp:     ts,
				Duration:      int32(duration(st.src, kind)),
				Device:        device,
				SessionId:     session,
			})); err != nil {
				return err
			}
			next := ts.Add(time.Duration(st.src.IntRange(10, 300)) * time.Second)
			if next.After(st.referenceTime) {
				next = st.referenceTime
			}
			ts = models.Millis(next)
		}
	}
	return nil
}

func duration(src *random.Source, kind models.InteractionType) int {
	switch kind {
	case models.InteractionSupport:
		return src.IntRange(60, 1800)
	case models.InteractionReview:
		return src.IntRange(30, 600)
	case models.InteractionPurchase, models.InteractionAddToCart:
		return src.IntRange(5, 120)
	default:
		return src.IntRange(2, 300)
	}
}
