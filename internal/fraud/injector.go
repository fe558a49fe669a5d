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

package fraud

import (
	"fmt"
	"time"

	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
	"olap-graph-datagen-go/internal/relation"

	"go.uber.org/zap"
)

// RoundAmounts are the transfer sizes used by laundering cycles.
var RoundAmounts = []float64{1_000, 5_000, 10_000, 25_000, 50_000}

var (
	burstApprovalWeights   = []float64{0.70, 0.25, 0.05}
	probeApprovalWeights   = []float64{0.55, 0.40, 0.05}
	colludeApprovalWeights = []float64{0.98, 0.02, 0}
)

const (
	takeoverWindow  = 14 * 24 * time.Hour
	launderWindow   = 60 * 24 * time.Hour
	collusionWindow = 30 * 24 * time.Hour
)

// Result carries the rows produced by injection. Entity pools are mutated
// in place.
type Result struct {
	Transactions []models.FraudTransaction
	Usage        []models.DeviceAccountUsage
	Instances    map[models.FraudPattern]int
}

// Injector plants adversarial topologies into the reserved pool slices.
// It runs once, after the entity pools are complete and before they are
// written.
type Injector struct {
	pools         *entity.FraudPools
	layout        *entity.FraudLayout
	stream        *relation.FraudStream
	src           *random.Source
	referenceTime time.Time
	result        *Result
	homeDevices   map[int]string
}

func NewInjector(cfg models.GeneratorConfig, pools *entity.FraudPools, stream *relation.FraudStream) *Injector {
	return &Injector{
		pools:         pools,
		layout:        pools.Layout,
		stream:        stream,
		src:           stream.Source(),
		referenceTime: cfg.ReferenceTime,
		homeDevices:   make(map[int]string),
	}
}

// Inject plants every pattern in AllFraudPatterns order.
func (in *Injector) Inject() (*Result, error) {
	in.result = &Result{Instances: make(map[models.FraudPattern]int)}
	for _, p := range models.AllFraudPatterns {
		slice := in.layout.Slice(p)
		if slice.Accounts.Len() == 0 {
			return nil, fmt.Errorf("pattern %s has no reserved accounts", p)
		}
		switch p {
		case models.PatternAccountTakeover:
			in.accountTakeover(slice)
		case models.PatternMoneyLaundering:
			in.moneyLaundering(slice)
		case models.PatternCardTesting:
			in.cardTesting(slice)
		case models.PatternSyntheticIdentity:
			in.syntheticIdentity(slice)
		case models.PatternMerchantCollusion:
			in.merchantCollusion(slice)
		}
		zap.L().Debug("Injected fraud pattern",
			zap.String("pattern", string(p)),
			zap.Int("instances", in.result.Instances[p]),
			zap.Int("accounts", slice.Accounts.Len()))
	}
	return in.result, nil
}

// accountTakeover builds stars: one suspicious device logged into by every
// account of the group after repeated failures.
func (in *Injector) accountTakeover(s entity.PatternSlice) {
	next := s.Accounts.Start
	for g, size := range s.Groups {
		device := &in.pools.Devices[s.Devices.Start+g]
		device.IsSuspicious = true
		burst := in.stream.Between(in.referenceTime.Add(-takeoverWindow), in.referenceTime.Add(-24*time.Hour))

		for k := 0; k < size; k++ {
			i := next
			next++
			account := &in.pools.Accounts[i]
			account.IsFraudulent = true

			first := burst.Add(time.Duration(k*in.src.IntRange(30, 300)) * time.Second)
			if first.Before(account.OpenedAt) {
				first = account.OpenedAt
			}
			last := first.Add(time.Duration(in.src.IntRange(1, 30)) * time.Minute)
			in.result.Usage = append(in.result.Usage, models.MustValid(models.DeviceAccountUsage{
				DeviceId:       device.DeviceId,
				AccountId:      account.AccountId,
				FirstLogin:     first,
				LastLogin:      last,
				LoginCount:     int32(in.src.IntRange(1, 10)),
				FailedAttempts: int32(in.src.IntRange(5, 25)),
				FraudPattern:   models.PatternAccountTakeover,
			}))
			widen(device, first, last)

			in.emit(models.FraudTransaction{
				FromAccountId:   account.AccountId,
				DeviceId:        device.DeviceId,
				Amount:          models.Cents(in.src.Uniform(500, 5_000)),
				TransactionType: models.TxnWithdrawal,
				Status:          models.AllApprovalStatuses[in.src.WeightedIndex(burstApprovalWeights)],
				Timestamp:       last.Add(time.Duration(in.src.IntRange(1, 10)) * time.Minute),
				FraudPattern:    models.PatternAccountTakeover,
			})
		}
		in.result.Instances[models.PatternAccountTakeover]++
	}
}

// moneyLaundering cuts the slice into directed cycles of round transfers
// that return to their origin.
func (in *Injector) moneyLaundering(s entity.PatternSlice) {
	next := s.Accounts.Start
	for _, size := range s.Groups {
		ring := make([]int, size)
		latest := time.Time{}
		for k := range ring {
			ring[k] = next
			next++
			in.markFraudulent(s, ring[k])
			if opened := in.pools.Accounts[ring[k]].OpenedAt; opened.After(latest) {
				latest = opened
			}
		}

		from := in.referenceTime.Add(-launderWindow)
		if latest.After(from) {
			from = latest
		}
		to := in.referenceTime.Add(-6 * time.Hour)
		if to.Before(from) {
			to = from
		}
		ts := in.stream.Between(from, to)
		amount := random.Pick(in.src, RoundAmounts)

		for k, i := range ring {
			if k > 0 {
				ts = ts.Add(time.Duration(in.src.IntRange(5, 45)) * time.Minute)
			}
			in.emit(models.FraudTransaction{
				FromAccountId:   in.pools.Accounts[i].AccountId,
				ToAccountId:     in.pools.Accounts[ring[(k+1)%size]].AccountId,
				DeviceId:        in.homeDevice(i, models.PatternMoneyLaundering),
				Amount:          amount,
				TransactionType: models.TxnTransfer,
				Status:          models.ApprovalApproved,
				Timestamp:       ts,
				FraudPattern:    models.PatternMoneyLaundering,
			})
		}
		in.result.Instances[models.PatternMoneyLaundering]++
	}
}

// cardTesting builds complete bipartite clusters: every account probes
// every merchant of its cluster with small charges seconds apart.
func (in *Injector) cardTesting(s entity.PatternSlice) {
	next := s.Accounts.Start
	for g, size := range s.Groups {
		merchants := in.pools.Merchants[s.Merchants.Start+g*entity.CardTestingMerchants : s.Merchants.Start+(g+1)*entity.CardTestingMerchants]
		for m := range merchants {
			score := models.Cents(in.src.Uniform(60, 85))
			merchants[m].RiskScore = score
			merchants[m].RiskLevel = models.RiskLevelFor(score)
		}

		for k := 0; k < size; k++ {
			i := next
			next++
			in.markFraudulent(s, i)
			account := in.pools.Accounts[i]
			device := in.homeDevice(i, models.PatternCardTesting)

			ts := in.stream.Between(account.OpenedAt, in.referenceTime)
			for _, merchant := range merchants {
				for probe := in.src.IntRange(1, 3); probe > 0; probe-- {
					ts = ts.Add(time.Duration(in.src.IntRange(2, 30)) * time.Second)
					in.emit(models.FraudTransaction{
						FromAccountId:   account.AccountId,
						MerchantId:      merchant.MerchantId,
						DeviceId:        device,
						Amount:          models.Cents(in.src.Uniform(0.5, 5)),
						TransactionType: models.TxnPayment,
						Status:          models.AllApprovalStatuses[in.src.WeightedIndex(probeApprovalWeights)],
						Timestamp:       ts,
						FraudPattern:    models.PatternCardTesting,
					})
				}
			}
		}
		in.result.Instances[models.PatternCardTesting]++
	}
}

type identityField int

const (
	sharedSsn identityField = iota
	sharedPhone
	sharedAddress
)

// syntheticIdentity forces each clique of customers to share identity
// attributes. One attribute is always shared by the whole clique.
func (in *Injector) syntheticIdentity(s entity.PatternSlice) {
	next := s.Customers.Start
	for _, size := range s.Groups {
		clique := in.pools.Customers[next : next+size]
		next += size

		shared := map[identityField]bool{random.Pick(in.src, []identityField{sharedSsn, sharedPhone, sharedAddress}): true}
		for _, f := range []identityField{sharedSsn, sharedPhone, sharedAddress} {
			if in.src.Bernoulli(0.5) {
				shared[f] = true
			}
		}

		anchor := clique[0]
		for c := range clique {
			member := &clique[c]
			if shared[sharedSsn] {
				member.SsnHash = anchor.SsnHash
			}
			if shared[sharedPhone] {
				member.Phone = anchor.Phone
			}
			if shared[sharedAddress] {
				member.Address, member.City, member.State, member.ZipCode = anchor.Address, anchor.City, anchor.State, anchor.ZipCode
			}
			member.IsFraudulent = true
			member.RiskScore = models.Cents(in.src.Uniform(70, 95))
		}
		in.result.Instances[models.PatternSyntheticIdentity]++
	}

	for i := s.Accounts.Start; i < s.Accounts.End; i++ {
		in.markFraudulent(s, i)
		account := in.pools.Accounts[i]
		device := in.homeDevice(i, models.PatternSyntheticIdentity)
		for n := in.src.IntRange(1, 3); n > 0; n-- {
			in.emit(models.FraudTransaction{
				FromAccountId:   account.AccountId,
				MerchantId:      in.pools.Merchants[in.src.IntN(in.layout.Base.Merchants)].MerchantId,
				DeviceId:        device,
				Amount:          models.Cents(in.src.Uniform(1_000, 9_000)),
				TransactionType: models.TxnPayment,
				Status:          models.ApprovalApproved,
				Timestamp:       in.stream.Between(account.OpenedAt, in.referenceTime),
				FraudPattern:    models.PatternSyntheticIdentity,
			})
		}
	}
}

// merchantCollusion builds dense account-merchant subgraphs with at least
// 90% of the possible edges, each carrying repeated approved payments.
func (in *Injector) merchantCollusion(s entity.PatternSlice) {
	next := s.Accounts.Start
	for g, size := range s.Groups {
		merchants := in.pools.Merchants[s.Merchants.Start+g*entity.CollusionMerchants : s.Merchants.Start+(g+1)*entity.CollusionMerchants]
		for m := range merchants {
			score := models.Cents(in.src.Uniform(85, 99))
			merchants[m].RiskScore = score
			merchants[m].RiskLevel = models.RiskLevelFor(score)
			merchants[m].IsVerified = false
			merchants[m].IsFraudulent = true
		}

		pairs := size * len(merchants)
		omit := map[int]bool{}
		for n := in.src.IntN(pairs/10 + 1); len(omit) < n; {
			omit[in.src.IntN(pairs)] = true
		}

		for k := 0; k < size; k++ {
			i := next
			next++
			in.markFraudulent(s, i)
			account := in.pools.Accounts[i]
			device := in.homeDevice(i, models.PatternMerchantCollusion)
			from := in.referenceTime.Add(-collusionWindow)
			if account.OpenedAt.After(from) {
				from = account.OpenedAt
			}

			for m, merchant := range merchants {
				if omit[k*len(merchants)+m] {
					continue
				}
				for n := in.src.IntRange(2, 5); n > 0; n-- {
					in.emit(models.FraudTransaction{
						FromAccountId:   account.AccountId,
						MerchantId:      merchant.MerchantId,
						DeviceId:        device,
						Amount:          models.Cents(in.src.Uniform(200, 2_000)),
						TransactionType: models.TxnPayment,
						Status:          models.AllApprovalStatuses[in.src.WeightedIndex(colludeApprovalWeights)],
						Timestamp:       in.stream.Between(from, in.referenceTime),
						FraudPattern:    models.PatternMerchantCollusion,
					})
				}
			}
		}
		in.result.Instances[models.PatternMerchantCollusion]++
	}
}

// emit fills the fields shared by every injected transaction.
func (in *Injector) emit(t models.FraudTransaction) {
	t.TransactionId = in.stream.TransactionID()
	t.Currency = relation.Currency
	t.FraudScore = models.Cents(in.src.Uniform(60, 99))
	t.IsFlagged = t.FraudScore >= 80
	t.IsFraudulent = true
	in.result.Transactions = append(in.result.Transactions, models.MustValid(t))
}

// homeDevice links a reserved account to one base device, once.
func (in *Injector) homeDevice(i int, pattern models.FraudPattern) string {
	if id, ok := in.homeDevices[i]; ok {
		return id
	}
	id := in.pools.Devices[in.src.IntN(in.layout.Base.Devices)].DeviceId
	in.homeDevices[i] = id
	in.result.Usage = append(in.result.Usage, in.stream.Usage(in.pools.Accounts[i], id, in.src.IntRange(0, 2), pattern))
	return id
}

// markFraudulent flags a reserved account and its owning customer.
func (in *Injector) markFraudulent(s entity.PatternSlice, i int) {
	in.pools.Accounts[i].IsFraudulent = true
	in.pools.Customers[s.OwnerOfReserved(i)].IsFraudulent = true
}

func widen(d *models.Device, first, last time.Time) {
	if first.Before(d.FirstSeen) {
		d.FirstSeen = first
	}
	if last.After(d.LastSeen) {
		d.LastSeen = last
	}
}
