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

import (
	"fmt"
	"time"
)

type FraudCustomer struct {
	CustomerId   string         `parquet:"customer_id"`
	Name         string         `parquet:"name"`
	Email        string         `parquet:"email"`
	Phone        string         `parquet:"phone"`
	SsnHash      string         `parquet:"ssn_hash"`
	Address      string         `parquet:"address"`
	City         string         `parquet:"city"`
	State        string         `parquet:"state"`
	ZipCode      string         `parquet:"zip_code"`
	DateOfBirth  time.Time      `parquet:"date_of_birth,timestamp(millisecond)"`
	RiskScore    float64        `parquet:"risk_score"`
	CreatedAt    time.Time      `parquet:"created_at,timestamp(millisecond)"`
	Status       CustomerStatus `parquet:"status"`
	IsFraudulent bool           `parquet:"is_fraudulent"`
}

func (c FraudCustomer) Validate() error {
	if c.CustomerId == "" || c.SsnHash == "" {
		return fmt.Errorf("fraud customer: empty id or ssn hash")
	}
	if err := checkScore("customer "+c.CustomerId+" risk_score", c.RiskScore); err != nil {
		return err
	}
	return checkEnum("customer.status", c.Status, AllCustomerStatuses)
}

type Account struct {
	AccountId    string        `parquet:"account_id"`
	CustomerId   string        `parquet:"customer_id"`
	AccountType  AccountType   `parquet:"account_type"`
	Balance      float64       `parquet:"balance"`
	CreditLimit  float64       `parquet:"credit_limit"`
	OpenedAt     time.Time     `parquet:"opened_at,timestamp(millisecond)"`
	Status       AccountStatus `parquet:"status"`
	IsFraudulent bool          `parquet:"is_fraudulent"`
}

func (a Account) Validate() error {
	if a.AccountId == "" || a.CustomerId == "" {
		return fmt.Errorf("account: empty id or owner")
	}
	if a.Balance < 0 || a.CreditLimit < 0 {
		return fmt.Errorf("account %s: negative balance or credit limit", a.AccountId)
	}
	if a.AccountType != AccountCredit && a.CreditLimit != 0 {
		return fmt.Errorf("account %s: credit limit on %s account", a.AccountId, a.AccountType)
	}
	if err := checkEnum("account.account_type", a.AccountType, AllAccountTypes); err != nil {
		return err
	}
	return checkEnum("account.status", a.Status, AllAccountStatuses)
}

type Device struct {
	DeviceId          string     `parquet:"device_id"`
	DeviceFingerprint string     `parquet:"device_fingerprint"`
	DeviceType        DeviceKind `parquet:"device_type"`
	Os                string     `parquet:"os"`
	Browser           string     `parquet:"browser"`
	IpAddress         string     `parquet:"ip_address"`
	Location          string     `parquet:"location"`
	Latitude          float64    `parquet:"latitude"`
	Longitude         float64    `parquet:"longitude"`
	FirstSeen         time.Time  `parquet:"first_seen,timestamp(millisecond)"`
	LastSeen          time.Time  `parquet:"last_seen,timestamp(millisecond)"`
	IsSuspicious      bool       `parquet:"is_suspicious"`
}

func (d Device) Validate() error {
	if d.DeviceId == "" || d.DeviceFingerprint == "" {
		return fmt.Errorf("device: empty id or fingerprint")
	}
	if d.LastSeen.Before(d.FirstSeen) {
		return fmt.Errorf("device %s: last_seen precedes first_seen", d.DeviceId)
	}
	return checkEnum("device.device_type", d.DeviceType, AllDeviceKinds)
}

type Merchant struct {
	MerchantId       string           `parquet:"merchant_id"`
	MerchantName     string           `parquet:"merchant_name"`
	Category         MerchantCategory `parquet:"category"`
	RiskLevel        RiskLevel        `parquet:"risk_level"`
	RiskScore        float64          `parquet:"risk_score"`
	RegistrationDate time.Time        `parquet:"registration_date,timestamp(millisecond)"`
	VolumeLast30d    float64          `parquet:"volume_last_30d"`
	IsVerified       bool             `parquet:"is_verified"`
	IsFraudulent     bool             `parquet:"is_fraudulent"`
}

func (m Merchant) Validate() error {
	if m.MerchantId == "" {
		return fmt.Errorf("merchant: empty id")
	}
	if err := checkScore("merchant "+m.MerchantId+" risk_score", m.RiskScore); err != nil {
		return err
	}
	if m.VolumeLast30d < 0 {
		return fmt.Errorf("merchant %s: negative volume", m.MerchantId)
	}
	if err := checkEnum("merchant.category", m.Category, AllMerchantCategories); err != nil {
		return err
	}
	return checkEnum("merchant.risk_level", m.RiskLevel, AllRiskLevels)
}

// FraudTransaction is a money movement between accounts or to a merchant.
// An empty ToAccountId or MerchantId means the counterparty is absent.
type FraudTransaction struct {
	TransactionId   string               `parquet:"transaction_id"`
	FromAccountId   string               `parquet:"from_account_id"`
	ToAccountId     string               `parquet:"to_account_id"`
	MerchantId      string               `parquet:"merchant_id"`
	DeviceId        string               `parquet:"device_id"`
	Amount          float64              `parquet:"amount"`
	Currency        string               `parquet:"currency"`
	TransactionType FraudTransactionType `parquet:"transaction_type"`
	Status          ApprovalStatus       `parquet:"status"`
	Timestamp       time.Time            `parquet:"timestamp,timestamp(millisecond)"`
	FraudScore      float64              `parquet:"fraud_score"`
	IsFlagged       bool                 `parquet:"is_flagged"`
	IsFraudulent    bool                 `parquet:"is_fraudulent"`
	FraudPattern    FraudPattern         `parquet:"fraud_pattern"`
}

func (t FraudTransaction) Validate() error {
	if t.TransactionId == "" || t.FromAccountId == "" || t.DeviceId == "" {
		return fmt.Errorf("fraud transaction: empty id, source account or device")
	}
	if t.Amount <= 0 {
		return fmt.Errorf("fraud transaction %s: amount %v must be positive", t.TransactionId, t.Amount)
	}
	if err := checkScore("fraud transaction "+t.TransactionId+" fraud_score", t.FraudScore); err != nil {
		return err
	}
	if t.ToAccountId == t.FromAccountId {
		return fmt.Errorf("fraud transaction %s: self transfer", t.TransactionId)
	}
	if err := checkEnum("fraud_transaction.transaction_type", t.TransactionType, AllFraudTransactionTypes); err != nil {
		return err
	}
	if err := checkEnum("fraud_transaction.status", t.Status, AllApprovalStatuses); err != nil {
		return err
	}
	return checkEnum("fraud_transaction.fraud_pattern", t.FraudPattern,
		append([]FraudPattern{PatternNone}, AllFraudPatterns...))
}

// ValidateAgainst checks the temporal invariant against the source account.
func (t FraudTransaction) ValidateAgainst(from Account) error {
	if t.FromAccountId != from.AccountId {
		return fmt.Errorf("fraud transaction %s: not sent from %s", t.TransactionId, from.AccountId)
	}
	if t.Timestamp.Before(from.OpenedAt) {
		return fmt.Errorf("fraud transaction %s: timestamp precedes account opening", t.TransactionId)
	}
	return nil
}

type DeviceAccountUsage struct {
	DeviceId       string       `parquet:"device_id"`
	AccountId      string       `parquet:"account_id"`
	FirstLogin     time.Time    `parquet:"first_login,timestamp(millisecond)"`
	LastLogin      time.Time    `parquet:"last_login,timestamp(millisecond)"`
	LoginCount     int32        `parquet:"login_count"`
	FailedAttempts int32        `parquet:"failed_attempts"`
	FraudPattern   FraudPattern `parquet:"fraud_pattern"`
}

func (u DeviceAccountUsage) Validate() error {
	if u.DeviceId == "" || u.AccountId == "" {
		return fmt.Errorf("device usage: empty device or account")
	}
	if u.LastLogin.Before(u.FirstLogin) {
		return fmt.Errorf("device usage %s/%s: last_login precedes first_login", u.DeviceId, u.AccountId)
	}
	if u.LoginCount <= 0 || u.FailedAttempts < 0 {
		return fmt.Errorf("device usage %s/%s: bad login counters", u.DeviceId, u.AccountId)
	}
	return nil
}

func checkScore(field string, score float64) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("%s %v outside [0, 100]", field, score)
	}
	return nil
}
