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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	customerHistory = 5 * 365 * 24 * time.Hour
	deviceHistory   = 2 * 365 * 24 * time.Hour
	merchantHistory = 6 * 365 * 24 * time.Hour
)

// Fraud entity ids are derived from the 1-based pool index.
const (
	customerIDFormat = "cust_%010d"
	accountIDFormat  = "acc_%010d"
	deviceIDFormat   = "dev_%010d"
	merchantIDFormat = "merch_%08d"
)

// FraudPools holds the materialized fraud entity pools. Reserved pattern
// slices sit at the tail of each pool, as described by Layout.
type FraudPools struct {
	Layout    *FraudLayout
	Customers []models.FraudCustomer
	Accounts  []models.Account
	Devices   []models.Device
	Merchants []models.Merchant
}

// FraudFactory creates fraud detection entities.
type FraudFactory struct {
	seed          uint64
	referenceTime time.Time
}

func NewFraudFactory(cfg models.GeneratorConfig) *FraudFactory {
	return &FraudFactory{seed: cfg.Seed, referenceTime: cfg.ReferenceTime}
}

// Pools materializes every fraud pool. Customers, devices and merchants are
// drawn concurrently from independent streams; accounts follow because they
// depend on their owners.
func (f *FraudFactory) Pools(ctx context.Context, layout *FraudLayout) (*FraudPools, error) {
	pools := &FraudPools{Layout: layout}
	scale := layout.Scale

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pools.Customers = f.customers(scale.Customers)
		return ctx.Err()
	})
	g.Go(func() error {
		pools.Devices = f.devices(scale.Devices)
		return ctx.Err()
	})
	g.Go(func() error {
		pools.Merchants = f.merchants(scale.Merchants)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build fraud pools: %w", err)
	}

	pools.Accounts = f.accounts(layout, pools.Customers)

	zap.L().Debug("Fraud pools materialized",
		zap.String("scale", layout.ScaleName),
		zap.Int("customers", len(pools.Customers)),
		zap.Int("accounts", len(pools.Accounts)),
		zap.Int("devices", len(pools.Devices)),
		zap.Int("merchants", len(pools.Merchants)))
	return pools, nil
}

// SsnHash hashes a social security number the way it is stored.
func SsnHash(ssn string) string {
	sum := sha256.Sum256([]byte(ssn))
	return hex.EncodeToString(sum[:])
}

func (f *FraudFactory) customers(n int) []models.FraudCustomer {
	src := random.NewSource(f.seed, "fraud-customers", 0)
	faker := src.Faker()
	out := make([]models.FraudCustomer, n)
	for i := range out {
		first, last := faker.FirstName(), faker.LastName()
		created := models.Millis(f.referenceTime.Add(-time.Duration(src.Float64() * float64(customerHistory))))
		age := time.Duration(src.Uniform(18, 80) * 365.25 * 24 * float64(time.Hour))
		status := models.CustomerActive
		switch r := src.Float64(); {
		case r < 0.02:
			status = models.CustomerClosed
		case r < 0.05:
			status = models.CustomerSuspended
		}

		out[i] = models.MustValid(models.FraudCustomer{
			CustomerId:  fmt.Sprintf(customerIDFormat, i+1),
			Name:        first + " " + last,
			Email:       fmt.Sprintf("%s.%s.%d@%s", emailPart(first), emailPart(last), i+1, faker.DomainName()),
			Phone:       faker.Phone(),
			SsnHash:     SsnHash(faker.SSN()),
			Address:     faker.Street(),
			City:        faker.City(),
			State:       faker.StateAbr(),
			ZipCode:     faker.Zip(),
			DateOfBirth: models.Millis(f.referenceTime.Add(-age)),
			RiskScore:   models.Cents(src.Uniform(0, 40)),
			CreatedAt:   created,
			Status:      status,
		})
	}
	return out
}

var accountTypeWeights = []float64{0.45, 0.25, 0.20, 0.10}

func (f *FraudFactory) accounts(layout *FraudLayout, customers []models.FraudCustomer) []models.Account {
	src := random.NewSource(f.seed, "fraud-accounts", 0)
	out := make([]models.Account, layout.Scale.Accounts)
	base := layout.Base

	for i := range out {
		owner := i
		if i >= base.Customers && i < base.Accounts {
			owner = src.IntN(base.Customers)
		}
		if i >= base.Accounts {
			for _, s := range layout.Patterns {
				if s.Accounts.Contains(i) {
					owner = s.OwnerOfReserved(i)
					break
				}
			}
		}
		out[i] = f.account(src, i, customers[owner])
	}
	return out
}

func (f *FraudFactory) account(src *random.Source, i int, owner models.FraudCustomer) models.Account {
	kind := models.AllAccountTypes[src.WeightedIndex(accountTypeWeights)]
	span := f.referenceTime.Sub(owner.CreatedAt)
	opened := models.Millis(owner.CreatedAt.Add(time.Duration(src.Float64() * 0.9 * float64(span))))

	account := models.Account{
		AccountId:   fmt.Sprintf(accountIDFormat, i+1),
		CustomerId:  owner.CustomerId,
		AccountType: kind,
		Balance:     models.Cents(src.LogNormal(8, 1.2)),
		OpenedAt:    opened,
		Status:      models.AccountActive,
	}
	if kind == models.AccountCredit {
		account.CreditLimit = float64(src.IntRange(1, 50) * 500)
	}
	switch r := src.Float64(); {
	case r < 0.03:
		account.Status = models.AccountClosed
	case r < 0.05:
		account.Status = models.AccountFrozen
	}
	return models.MustValid(account)
}

var (
	deviceKindWeights = []float64{0.35, 0.55, 0.10}
	osByKind          = map[models.DeviceKind][]string{
		models.DeviceDesktop: {"Windows 11", "Windows 10", "macOS 14", "Ubuntu 22.04"},
		models.DeviceMobile:  {"iOS 17", "iOS 16", "Android 14", "Android 13"},
		models.DeviceTablet:  {"iPadOS 17", "Android 14"},
	}
	browsers = []string{"Chrome", "Safari", "Firefox", "Edge", "Samsung Internet"}
)

func (f *FraudFactory) devices(n int) []models.Device {
	src := random.NewSource(f.seed, "fraud-devices", 0)
	faker := src.Faker()
	out := make([]models.Device, n)
	for i := range out {
		kind := models.AllDeviceKinds[src.WeightedIndex(deviceKindWeights)]
		first := models.Millis(f.referenceTime.Add(-time.Duration(src.Float64() * float64(deviceHistory))))
		last := models.Millis(first.Add(time.Duration(src.Float64() * float64(f.referenceTime.Sub(first)))))

		out[i] = models.MustValid(models.Device{
			DeviceId:          fmt.Sprintf(deviceIDFormat, i+1),
			DeviceFingerprint: fmt.Sprintf("%016x%016x", src.Uint64(), src.Uint64()),
			DeviceType:        kind,
			Os:                random.Pick(src, osByKind[kind]),
			Browser:           random.Pick(src, browsers),
			IpAddress:         faker.IPv4Address(),
			Location:          faker.City() + ", " + faker.StateAbr(),
			Latitude:          faker.Latitude(),
			Longitude:         faker.Longitude(),
			FirstSeen:         first,
			LastSeen:          last,
			IsSuspicious:      src.Bernoulli(0.02),
		})
	}
	return out
}

func (f *FraudFactory) merchants(n int) []models.Merchant {
	src := random.NewSource(f.seed, "fraud-merchants", 0)
	faker := src.Faker()
	out := make([]models.Merchant, n)
	for i := range out {
		score := models.Cents(src.Uniform(0, 50))
		out[i] = models.MustValid(models.Merchant{
			MerchantId:       fmt.Sprintf(merchantIDFormat, i+1),
			MerchantName:     faker.Company(),
			Category:         random.Pick(src, models.AllMerchantCategories),
			RiskLevel:        models.RiskLevelFor(score),
			RiskScore:        score,
			RegistrationDate: models.Millis(f.referenceTime.Add(-time.Duration(src.Float64() * float64(merchantHistory)))),
			VolumeLast30d:    models.Cents(src.LogNormal(10, 1.5)),
			IsVerified:       src.Bernoulli(0.85),
		})
	}
	return out
}
