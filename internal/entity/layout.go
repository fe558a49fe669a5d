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

	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
)

// Span is a half-open index range [Start, End) into an entity pool.
type Span struct {
	Start, End int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Contains(i int) bool {
	return i >= s.Start && i < s.End
}

// PatternSlice is the disjoint tail reservation owned by one fraud pattern.
type PatternSlice struct {
	Pattern   models.FraudPattern
	Accounts  Span
	Customers Span
	Devices   Span
	Merchants Span
	// Groups partitions the slice into pattern instances: accounts for
	// every pattern except synthetic identity, which groups customers.
	Groups []int
}

// FraudLayout splits every fraud pool into a base prefix and reserved
// pattern slices at its tail.
type FraudLayout struct {
	ScaleName string
	Scale     models.FraudScale
	Base      struct{ Customers, Accounts, Devices, Merchants int }
	Patterns  []PatternSlice
}

const (
	starMin, starMax     = 15, 20
	cycleMin, cycleMax   = 3, 8
	cliqueMin, cliqueMax = 4, 8

	CardTestingAccounts      = 10
	CardTestingMerchants     = 3
	CollusionAccounts        = 12
	CollusionMerchants       = 4
	reservedAccountsPerOwner = 2
)

// PlanFraud validates the pattern budget against the selected scale profile
// and lays out the reserved slices. Every failure is a ConfigError raised
// before any file is written.
func PlanFraud(cfg models.GeneratorConfig) (*FraudLayout, error) {
	name := cfg.Fraud.ScaleName(cfg.CustomerScale)
	scale, ok := cfg.Fraud.Scales[name]
	if !ok {
		return nil, models.NewConfigError("fraud_scales."+name, nil, "profile is missing")
	}

	reserved := cfg.Fraud.ReservedAccounts()
	if limit := cfg.Fraud.MaxFraudFraction * float64(scale.Accounts); float64(reserved) > limit {
		return nil, models.NewConfigError("pattern_accounts", reserved,
			"reserves more than %.0f of %d accounts (MAX_FRAUD_FRACTION=%.2f)",
			limit, scale.Accounts, cfg.Fraud.MaxFraudFraction)
	}

	src := random.NewSource(cfg.Seed, "fraud-plan", 0)
	layout := &FraudLayout{ScaleName: name, Scale: scale}

	var needCustomers, needDevices, needMerchants int
	slices := make([]PatternSlice, 0, len(models.AllFraudPatterns))
	sizes := make([]poolCounts, 0, len(models.AllFraudPatterns))
	for _, p := range models.AllFraudPatterns {
		n := cfg.Fraud.PatternAccounts[p]
		param := "pattern_accounts." + string(p)
		owners := (n + reservedAccountsPerOwner - 1) / reservedAccountsPerOwner
		slice := PatternSlice{Pattern: p}
		var devices, merchants int
		var err error

		switch p {
		case models.PatternAccountTakeover:
			slice.Groups, err = partition(src, n, starMin, starMax)
			devices = len(slice.Groups)
		case models.PatternMoneyLaundering:
			slice.Groups, err = partition(src, n, cycleMin, cycleMax)
		case models.PatternCardTesting:
			slice.Groups, err = clusters(n, CardTestingAccounts)
			merchants = len(slice.Groups) * CardTestingMerchants
		case models.PatternSyntheticIdentity:
			slice.Groups, err = partition(src, owners, cliqueMin, cliqueMax)
		case models.PatternMerchantCollusion:
			slice.Groups, err = clusters(n, CollusionAccounts)
			merchants = len(slice.Groups) * CollusionMerchants
		}
		if err != nil {
			return nil, models.NewConfigError(param, n, "%v", err)
		}

		sizes = append(sizes, poolCounts{accounts: n, customers: owners, devices: devices, merchants: merchants})
		needCustomers += owners
		needDevices += devices
		needMerchants += merchants
		slices = append(slices, slice)
	}

	if needCustomers >= scale.Customers {
		return nil, models.NewConfigError("fraud_scales."+name+".customers", scale.Customers,
			"pattern owners need %d customers and at least one base customer must remain", needCustomers)
	}
	if needDevices >= scale.Devices {
		return nil, models.NewConfigError("fraud_scales."+name+".devices", scale.Devices,
			"account takeover stars need %d devices and at least one base device must remain", needDevices)
	}
	if needMerchants >= scale.Merchants {
		return nil, models.NewConfigError("fraud_scales."+name+".merchants", scale.Merchants,
			"card testing and collusion need %d merchants and at least one base merchant must remain", needMerchants)
	}
	if reserved >= scale.Accounts {
		return nil, models.NewConfigError("pattern_accounts", reserved, "no base accounts remain")
	}

	layout.Base.Customers = scale.Customers - needCustomers
	layout.Base.Accounts = scale.Accounts - reserved
	layout.Base.Devices = scale.Devices - needDevices
	layout.Base.Merchants = scale.Merchants - needMerchants

	a, c, d, m := layout.Base.Accounts, layout.Base.Customers, layout.Base.Devices, layout.Base.Merchants
	for i := range slices {
		s, n := &slices[i], sizes[i]
		s.Accounts = Span{a, a + n.accounts}
		s.Customers = Span{c, c + n.customers}
		s.Devices = Span{d, d + n.devices}
		s.Merchants = Span{m, m + n.merchants}
		a, c, d, m = s.Accounts.End, s.Customers.End, s.Devices.End, s.Merchants.End
	}
	layout.Patterns = slices
	return layout, nil
}

type poolCounts struct {
	accounts, customers, devices, merchants int
}

// Slice returns the reservation of a pattern.
func (l *FraudLayout) Slice(p models.FraudPattern) PatternSlice {
	for _, s := range l.Patterns {
		if s.Pattern == p {
			return s
		}
	}
	return PatternSlice{Pattern: p}
}

// OwnerOfReserved maps a reserved account to its owning reserved customer.
// Reserved customers each own two consecutive accounts of their slice.
func (s PatternSlice) OwnerOfReserved(account int) int {
	return s.Customers.Start + (account-s.Accounts.Start)/reservedAccountsPerOwner
}

// partition splits n into groups whose sizes lie in [lo, hi]. The group
// count is fixed by n so downstream reservations are predictable.
func partition(src *random.Source, n, lo, hi int) ([]int, error) {
	minGroups := (n + hi - 1) / hi
	maxGroups := n / lo
	if minGroups > maxGroups || maxGroups == 0 {
		return nil, errPartition(n, lo, hi)
	}
	g := int(math.Round(float64(n) / (float64(lo+hi) / 2)))
	g = max(minGroups, min(maxGroups, g))

	sizes := make([]int, g)
	for i := range sizes {
		sizes[i] = lo
	}
	for extra := n - lo*g; extra > 0; {
		i := src.IntN(g)
		if sizes[i] < hi {
			sizes[i]++
			extra--
		}
	}
	return sizes, nil
}

// clusters splits n into groups of size, spreading any remainder.
func clusters(n, size int) ([]int, error) {
	g := n / size
	if g == 0 {
		return nil, errPartition(n, size, size)
	}
	sizes := make([]int, g)
	for i := range sizes {
		sizes[i] = size
	}
	for i := 0; i < n%size; i++ {
		sizes[i%g]++
	}
	return sizes, nil
}

func errPartition(n, lo, hi int) error {
	return fmt.Errorf("%d cannot be split into groups of %d to %d", n, lo, hi)
}
