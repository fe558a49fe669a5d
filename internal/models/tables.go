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

package models

// AnchorShard is the file shard the fixture anchors are written under.
// Customer shards must stay below it.
const AnchorShard = 9999

// Table names double as output directory names.
const (
	TableCustomers          = "customers"
	TableProducts           = "products"
	TableTransactions       = "transactions"
	TableInteractions       = "interactions"
	TableAccounts           = "accounts"
	TableDevices            = "devices"
	TableMerchants          = "merchants"
	TableFraudTransactions  = "fraud_transactions"
	TableDeviceAccountUsage = "device_account_usage"
)

var Customer360Tables = []string{TableCustomers, TableProducts, TableTransactions, TableInteractions}

var FraudTables = []string{
	TableCustomers, TableAccounts, TableDevices, TableMerchants,
	TableFraudTransactions, TableDeviceAccountUsage,
}

// Datasets expands a use case into the single datasets it produces.
func (u UseCase) Datasets() []UseCase {
	switch u {
	case UseCaseBoth:
		return []UseCase{UseCaseCustomer360, UseCaseFraud}
	default:
		return []UseCase{u}
	}
}
