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

	"olap-graph-datagen-go/internal/models"
)

func checkCustomer360(ctx context.Context, root string, r *Report) error {
	dataset := models.UseCaseCustomer360

	customers := make(map[string]models.Customer)
	emails := make(map[string]bool)
	err := eachFile(ctx, root, dataset, models.TableCustomers, func(rows []models.Customer) {
		r.count(dataset, models.TableCustomers, len(rows))
		for _, c := range rows {
			if err := c.Validate(); err != nil {
				r.violate("%v", err)
			}
			if _, dup := customers[c.CustomerId]; dup {
				r.violate("customer %s appears twice", c.CustomerId)
			}
			if emails[c.Email] {
				r.violate("email %s is not unique", c.Email)
			}
			emails[c.Email] = true
			customers[c.CustomerId] = c
		}
	})
	if err != nil {
		return err
	}
	products := make(map[string]bool)
	err = eachFile(ctx, root, dataset, models.TableProducts, func(rows []models.Product) {
		r.count(dataset, models.TableProducts, len(rows))
		for _, p := range rows {
			if err := p.Validate(); err != nil {
				r.violate("%v", err)
			}
			products[p.ProductId] = true
		}
	})
	if err != nil {
		return err
	}

	err = eachFile(ctx, root, dataset, models.TableTransactions, func(rows []models.Transaction) {
		r.count(dataset, models.TableTransactions, len(rows))
		for _, t := range rows {
			if err := t.Validate(); err != nil {
				r.violate("%v", err)
				continue
			}
			c, ok := customers[t.CustomerId]
			if !ok {
				r.violate("transaction %s references unknown customer %s", t.TransactionId, t.CustomerId)
				continue
			}
			if !products[t.ProductId] {
				r.violate("transaction %s references unknown product %s", t.TransactionId, t.ProductId)
			}
			if err := t.ValidateAgainst(c); err != nil {
				r.violate("%v", err)
			}
		}
	})
	if err != nil {
		return err
	}

	return eachFile(ctx, root, dataset, models.TableInteractions, func(rows []models.Interaction) {
		r.count(dataset, models.TableInteractions, len(rows))
		for _, i := range rows {
			if err := i.Validate(); err != nil {
				r.violate("%v", err)
				continue
			}
			if _, ok := customers[i.CustomerId]; !ok {
				r.violate("interaction %s references unknown customer %s", i.InteractionId, i.CustomerId)
			}
			if !products[i.ProductId] {
				r.violate("interaction %s references unknown product %s", i.InteractionId, i.ProductId)
			}
		}
	})
}
