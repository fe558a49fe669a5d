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
	"strings"
)

// UseCase selects which datasets a run produces
type UseCase string

const (
	UseCaseCustomer360 UseCase = "customer360"
	UseCaseFraud       UseCase = "fraud"
	UseCaseBoth        UseCase = "both"
)

// Includes reports whether the selector covers the given single dataset.
func (u UseCase) Includes(dataset UseCase) bool {
	return u == UseCaseBoth || u == dataset
}

// ParseUseCase accepts "fraud-detection" as an alias of "fraud".
func ParseUseCase(value string) (UseCase, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "fraud-detection" || v == "fraud_detection" {
		v = string(UseCaseFraud)
	}
	return parseEnum("USE_CASE", v, []UseCase{UseCaseCustomer360, UseCaseFraud, UseCaseBoth})
}

// Codec is a Parquet compression codec name
type Codec string

const (
	CodecSnappy Codec = "snappy"
	CodecGzip   Codec = "gzip"
	CodecLZ4    Codec = "lz4"
	CodecZstd   Codec = "zstd"
	CodecNone   Codec = "none"
)

func ParseCodec(value string) (Codec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "uncompressed" || v == "" {
		v = string(CodecNone)
	}
	return parseEnum("PARQUET_COMPRESSION", v, []Codec{CodecSnappy, CodecGzip, CodecLZ4, CodecZstd, CodecNone})
}

// Segment is a mutually exclusive customer value tier
type Segment string

const (
	SegmentVIP      Segment = "VIP"
	SegmentPremium  Segment = "Premium"
	SegmentStandard Segment = "Standard"
	SegmentBasic    Segment = "Basic"
)

// AllSegments lists segments from highest to lowest value.
var AllSegments = []Segment{SegmentVIP, SegmentPremium, SegmentStandard, SegmentBasic}

func ParseSegment(value string) (Segment, error) {
	for _, s := range AllSegments {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, nil
		}
	}
	return "", NewConfigError("segment", value, "must be one of %v", AllSegments)
}

// IsHighValue reports VIP and Premium customers.
func (s Segment) IsHighValue() bool {
	return s == SegmentVIP || s == SegmentPremium
}

// Category is a product catalog category
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryHome        Category = "Home"
	CategoryBooks       Category = "Books"
	CategorySports      Category = "Sports"
	CategoryBeauty      Category = "Beauty"
)

var AllCategories = []Category{
	CategoryElectronics, CategoryClothing, CategoryHome,
	CategoryBooks, CategorySports, CategoryBeauty,
}

type Channel string

const (
	ChannelWeb       Channel = "web"
	ChannelMobileApp Channel = "mobile_app"
	ChannelStore     Channel = "store"
)

var AllChannels = []Channel{ChannelWeb, ChannelMobileApp, ChannelStore}

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusRefunded  TransactionStatus = "refunded"
	StatusPending   TransactionStatus = "pending"
)

var AllTransactionStatuses = []TransactionStatus{StatusCompleted, StatusCancelled, StatusRefunded, StatusPending}

type InteractionType string

const (
	InteractionView      InteractionType = "view"
	InteractionClick     InteractionType = "click"
	InteractionAddToCart InteractionType = "add_to_cart"
	InteractionPurchase  InteractionType = "purchase"
	InteractionSupport   InteractionType = "support"
	InteractionReview    InteractionType = "review"
)

var AllInteractionTypes = []InteractionType{
	InteractionView, InteractionClick, InteractionAddToCart,
	InteractionPurchase, InteractionSupport, InteractionReview,
}

type DeviceKind string

const (
	DeviceDesktop DeviceKind = "desktop"
	DeviceMobile  DeviceKind = "mobile"
	DeviceTablet  DeviceKind = "tablet"
)

var AllDeviceKinds = []DeviceKind{DeviceDesktop, DeviceMobile, DeviceTablet}

// Fraud domain enumerations

type CustomerStatus string

const (
	CustomerActive    CustomerStatus = "active"
	CustomerSuspended CustomerStatus = "suspended"
	CustomerClosed    CustomerStatus = "closed"
)

var AllCustomerStatuses = []CustomerStatus{CustomerActive, CustomerSuspended, CustomerClosed}

type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCredit   AccountType = "credit"
	AccountLoan     AccountType = "loan"
)

var AllAccountTypes = []AccountType{AccountChecking, AccountSavings, AccountCredit, AccountLoan}

type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountFrozen AccountStatus = "frozen"
	AccountClosed AccountStatus = "closed"
)

var AllAccountStatuses = []AccountStatus{AccountActive, AccountFrozen, AccountClosed}

type MerchantCategory string

const (
	MerchantGrocery       MerchantCategory = "grocery"
	MerchantGasStation    MerchantCategory = "gas_station"
	MerchantRestaurant    MerchantCategory = "restaurant"
	MerchantRetail        MerchantCategory = "retail"
	MerchantOnline        MerchantCategory = "online"
	MerchantPharmacy      MerchantCategory = "pharmacy"
	MerchantHotel         MerchantCategory = "hotel"
	MerchantAirline       MerchantCategory = "airline"
	MerchantEntertainment MerchantCategory = "entertainment"
	MerchantOther         MerchantCategory = "other"
)

var AllMerchantCategories = []MerchantCategory{
	MerchantGrocery, MerchantGasStation, MerchantRestaurant, MerchantRetail, MerchantOnline,
	MerchantPharmacy, MerchantHotel, MerchantAirline, MerchantEntertainment, MerchantOther,
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var AllRiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// RiskLevelFor buckets a 0-100 risk score.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 85:
		return RiskCritical
	case score >= 60:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

type FraudTransactionType string

const (
	TxnTransfer   FraudTransactionType = "transfer"
	TxnDeposit    FraudTransactionType = "deposit"
	TxnWithdrawal FraudTransactionType = "withdrawal"
	TxnPayment    FraudTransactionType = "payment"
)

var AllFraudTransactionTypes = []FraudTransactionType{TxnTransfer, TxnDeposit, TxnWithdrawal, TxnPayment}

type ApprovalStatus string

const (
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalDeclined ApprovalStatus = "declined"
	ApprovalPending  ApprovalStatus = "pending"
)

var AllApprovalStatuses = []ApprovalStatus{ApprovalApproved, ApprovalDeclined, ApprovalPending}

// FraudPattern labels the injected topology a record belongs to
type FraudPattern string

const (
	PatternNone              FraudPattern = "none"
	PatternAccountTakeover   FraudPattern = "account_takeover"
	PatternMoneyLaundering   FraudPattern = "money_laundering"
	PatternCardTesting       FraudPattern = "card_testing"
	PatternSyntheticIdentity FraudPattern = "synthetic_identity"
	PatternMerchantCollusion FraudPattern = "merchant_collusion"
)

// AllFraudPatterns lists the injected topologies in injection order.
var AllFraudPatterns = []FraudPattern{
	PatternAccountTakeover, PatternMoneyLaundering, PatternCardTesting,
	PatternSyntheticIdentity, PatternMerchantCollusion,
}

func ParseFraudPattern(value string) (FraudPattern, error) {
	return parseEnum("fraud_pattern", strings.ToLower(strings.TrimSpace(value)),
		append([]FraudPattern{PatternNone}, AllFraudPatterns...))
}

func parseEnum[T ~string](param, value string, allowed []T) (T, error) {
	for _, a := range allowed {
		if string(a) == value {
			return a, nil
		}
	}
	var zero T
	return zero, NewConfigError(param, value, "must be one of %v", allowed)
}

func isMember[T comparable](value T, allowed []T) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

func checkEnum[T ~string](field string, value T, allowed []T) error {
	if !isMember(value, allowed) {
		return fmt.Errorf("%s %q is not a declared value", field, string(value))
	}
	return nil
}
