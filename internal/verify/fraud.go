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

package verify

import (
	"context"

	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/fraud"
	"olap-graph-datagen-go/internal/models"
)

const (
	takeoverFanOut   = 15
	cliqueMinSize    = 4
	collusionDensity = 0.9
	probeAmountMax   = 5.0
)

func checkFraud(ctx context.Context, root string, r *Report) error {
	dataset := models.UseCaseFraud

	customers, err := loadAll[models.FraudCustomer](ctx, root, dataset, models.TableCustomers)
	if err != nil {
		return err
	}
	accounts, err := loadAll[models.Account](ctx, root, dataset, models.TableAccounts)
	if err != nil {
		return err
	}
	devices, err := loadAll[models.Device](ctx, root, dataset, models.TableDevices)
	if err != nil {
		return err
	}
	merchants, err := loadAll[models.Merchant](ctx, root, dataset, models.TableMerchants)
	if err != nil {
		return err
	}
	r.count(dataset, models.TableCustomers, len(customers))
	r.count(dataset, models.TableAccounts, len(accounts))
	r.count(dataset, models.TableDevices, len(devices))
	r.count(dataset, models.TableMerchants, len(merchants))

	customerIDs := make(map[string]bool, len(customers))
	for _, c := range customers {
		if err := c.Validate(); err != nil {
			r.violate("%v", err)
		}
		customerIDs[c.CustomerId] = true
	}
	accountByID := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		if err := a.Validate(); err != nil {
			r.violate("%v", err)
		}
		if !customerIDs[a.CustomerId] {
			r.violate("account %s references unknown customer %s", a.AccountId, a.CustomerId)
		}
		accountByID[a.AccountId] = a
	}
	deviceIDs := make(map[string]bool, len(devices))
	for _, d := range devices {
		if err := d.Validate(); err != nil {
			r.violate("%v", err)
		}
		deviceIDs[d.DeviceId] = true
	}
	merchantIDs := make(map[string]bool, len(merchants))
	for _, m := range merchants {
		if err := m.Validate(); err != nil {
			r.violate("%v", err)
		}
		merchantIDs[m.MerchantId] = true
	}

	patternTxns := make(map[models.FraudPattern][]models.FraudTransaction)
	err = eachFile(ctx, root, dataset, models.TableFraudTransactions, func(rows []models.FraudTransaction) {
		r.count(dataset, models.TableFraudTransactions, len(rows))
		for _, t := range rows {
			if err := t.Validate(); err != nil {
				r.violate("%v", err)
				continue
			}
			from, ok := accountByID[t.FromAccountId]
			if !ok {
				r.violate("fraud transaction %s references unknown account %s", t.TransactionId, t.FromAccountId)
				continue
			}
			if err := t.ValidateAgainst(from); err != nil {
				r.violate("%v", err)
			}
			if _, ok := accountByID[t.ToAccountId]; t.ToAccountId != "" && !ok {
				r.violate("fraud transaction %s references unknown account %s", t.TransactionId, t.ToAccountId)
			}
			if t.MerchantId != "" && !merchantIDs[t.MerchantId] {
				r.violate("fraud transaction %s references unknown merchant %s", t.TransactionId, t.MerchantId)
			}
			if !deviceIDs[t.DeviceId] {
				r.violate("fraud transaction %s references unknown device %s", t.TransactionId, t.DeviceId)
			}
			if t.FraudPattern != models.PatternNone {
				patternTxns[t.FraudPattern] = append(patternTxns[t.FraudPattern], t)
			}
		}
	})
	if err != nil {
		return err
	}

	var takeoverUsage []models.DeviceAccountUsage
	err = eachFile(ctx, root, dataset, models.TableDeviceAccountUsage, func(rows []models.DeviceAccountUsage) {
		r.count(dataset, models.TableDeviceAccountUsage, len(rows))
		for _, u := range rows {
			if err := u.Validate(); err != nil {
				r.violate("%v", err)
				continue
			}
			if !deviceIDs[u.DeviceId] {
				r.violate("device usage references unknown device %s", u.DeviceId)
			}
			if _, ok := accountByID[u.AccountId]; !ok {
				r.violate("device usage references unknown account %s", u.AccountId)
			}
			if u.FraudPattern == models.PatternAccountTakeover {
				takeoverUsage = append(takeoverUsage, u)
			}
		}
	})
	if err != nil {
		return err
	}

	r.Patterns[models.PatternAccountTakeover] = len(fraud.DeviceFanOut(takeoverUsage, takeoverFanOut))
	r.Patterns[models.PatternMoneyLaundering] = len(fraud.FindCycles(patternTxns[models.PatternMoneyLaundering], 3, 8, 0))
	r.Patterns[models.PatternCardTesting] = countProbeClusters(patternTxns[models.PatternCardTesting])
	r.Patterns[models.PatternSyntheticIdentity] = countCliques(customers)
	r.Patterns[models.PatternMerchantCollusion] = countDenseComponents(patternTxns[models.PatternMerchantCollusion])

	for _, p := range models.AllFraudPatterns {
		if r.Patterns[p] == 0 {
			r.violate("fraud pattern %s not detected", p)
		}
	}
	return nil
}

// countProbeClusters counts payment components where a group of accounts
// probes the same few merchants with small amounts.
func countProbeClusters(txns []models.FraudTransaction) int {
	for _, t := range txns {
		if t.Amount > probeAmountMax {
			return 0
		}
	}
	n := 0
	for _, c := range fraud.PaymentComponents(txns) {
		if len(c.Accounts) >= entity.CardTestingAccounts && len(c.Merchants) >= entity.CardTestingMerchants {
			n++
		}
	}
	return n
}

func countDenseComponents(txns []models.FraudTransaction) int {
	n := 0
	for _, c := range fraud.PaymentComponents(txns) {
		if len(c.Accounts) >= entity.CollusionAccounts && len(c.Merchants) >= entity.CollusionMerchants &&
			c.Density() >= collusionDensity {
			n++
		}
	}
	return n
}

// countCliques counts fraudulent customer groups sharing an identity
// attribute.
func countCliques(customers []models.FraudCustomer) int {
	var flagged []models.FraudCustomer
	for _, c := range customers {
		if c.IsFraudulent {
			flagged = append(flagged, c)
		}
	}
	return len(fraud.SharedIdentities(flagged, cliqueMinSize))
}
