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
	"fmt"
	"math"
	"time"

	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
)

const Currency = "USD"

var (
	fraudTypeWeights     = []float64{0.35, 0.10, 0.10, 0.45}
	baseApprovalWeights  = []float64{0.95, 0.04, 0.01}
	baseFraudScoreRange  = [2]float64{1, 30}
	baseFailedAttemptMax = 2
)

// FraudSynthesizer relates base (non-reserved) fraud entities: device usage
// and everyday transactions. Reserved slices are left to the pattern
// injector.
type FraudSynthesizer struct {
	pools          *entity.FraudPools
	referenceTime  time.Time
	meanPerAccount float64
}

func NewFraudSynthesizer(cfg models.GeneratorConfig, pools *entity.FraudPools) *FraudSynthesizer {
	base := pools.Layout.Base.Accounts
	return &FraudSynthesizer{
		pools:          pools,
		referenceTime:  cfg.ReferenceTime,
		meanPerAccount: float64(pools.Layout.Scale.Transactions) / float64(base),
	}
}

// FraudStream is the per-shard view of a FraudSynthesizer.
type FraudStream struct {
	*FraudSynthesizer
	src   *random.Source
	shard int
	next  int64
}

func (s *FraudSynthesizer) Stream(src *random.Source, shard int) *FraudStream {
	return &FraudStream{FraudSynthesizer: s, src: src, shard: shard}
}

// TransactionID allocates a shard-qualified fraud transaction id.
func (st *FraudStream) TransactionID() string {
	st.next++
	return fmt.Sprintf("ftx_%04d_%08d", st.shard, st.next)
}

// Source exposes the shard's random stream to collaborators on the same
// goroutine.
func (st *FraudStream) Source() *random.Source {
	return st.src
}

// Account emits device usage and base transactions of base account i.
func (st *FraudStream) Account(i int, usage func(models.DeviceAccountUsage) error, txn func(models.FraudTransaction) error) error {
	account := st.pools.Accounts[i]
	base := st.pools.Layout.Base

	n := st.src.IntRange(1, min(2, base.Devices))
	devices := make([]models.DeviceAccountUsage, 0, n)
	for _, d := range distinct(st.src, base.Devices, n) {
		u := st.Usage(account, st.pools.Devices[d].DeviceId, st.src.IntRange(0, baseFailedAttemptMax), models.PatternNone)
		if err := usage(u); err != nil {
			return err
		}
		devices = append(devices, u)
	}

	count := st.src.Poisson(st.meanPerAccount)
	for k := 0; k < count; k++ {
		u := random.Pick(st.src, devices)
		t := models.FraudTransaction{
			TransactionId: st.TransactionID(),
			FromAccountId: account.AccountId,
			DeviceId:      u.DeviceId,
			Currency:      Currency,
			Status:        models.AllApprovalStatuses[st.src.WeightedIndex(baseApprovalWeights)],
			Timestamp:     st.Between(u.FirstLogin, st.referenceTime),
			FraudScore:    models.Cents(st.src.Uniform(baseFraudScoreRange[0], baseFraudScoreRange[1])),
			FraudPattern:  models.PatternNone,
		}

		kind := models.AllFraudTransactionTypes[st.src.WeightedIndex(fraudTypeWeights)]
		if kind == models.TxnTransfer && base.Accounts < 2 {
			kind = models.TxnPayment
		}
		t.TransactionType = kind
		switch kind {
		case models.TxnTransfer:
			to := st.src.IntN(base.Accounts - 1)
			if to >= i {
				to++
			}
			t.ToAccountId = st.pools.Accounts[to].AccountId
			t.Amount = st.amount(math.Log(300), 1.0, 5, 20_000)
		case models.TxnPayment:
			t.MerchantId = st.pools.Merchants[st.src.IntN(base.Merchants)].MerchantId
			t.Amount = st.amount(math.Log(60), 1.0, 1, 5_000)
		default:
			t.Amount = st.amount(math.Log(200), 0.8, 10, 10_000)
		}

		if err := txn(models.MustValid(t)); err != nil {
			return err
		}
	}
	return nil
}

// Usage links an account to a device with logins after the account opened.
func (st *FraudStream) Usage(account models.Account, deviceID string, failed int, pattern models.FraudPattern) models.DeviceAccountUsage {
	first := st.Between(account.OpenedAt, account.OpenedAt.Add(st.referenceTime.Sub(account.OpenedAt)/2))
	last := st.Between(first, st.referenceTime)
	return models.MustValid(models.DeviceAccountUsage{
		DeviceId:       deviceID,
		AccountId:      account.AccountId,
		FirstLogin:     first,
		LastLogin:      last,
		LoginCount:     int32(st.src.IntRange(1, 200)),
		FailedAttempts: int32(failed),
		FraudPattern:   pattern,
	})
}

// Between draws a millisecond timestamp in [from, to]; from wins when the
// range is empty.
func (st *FraudStream) Between(from, to time.Time) time.Time {
	if !to.After(from) {
		return models.Millis(from)
	}
	ts := models.Millis(from.Add(time.Duration(st.src.Float64() * float64(to.Sub(from)))))
	if ts.Before(from) {
		// truncation may step below a sub-millisecond lower bound
		ts = ts.Add(time.Millisecond)
	}
	return ts
}

func (st *FraudStream) amount(mu, sigma, lo, hi float64) float64 {
	v := st.src.LogNormal(mu, sigma)
	return models.Cents(math.Max(lo, math.Min(hi, v)))
}

// distinct draws k distinct indexes from [0, n).
func distinct(src *random.Source, n, k int) []int {
	out := make([]int, 0, k)
	for len(out) < k {
		v := src.IntN(n)
		dup := false
		for _, x := range out {
			dup = dup || x == v
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
