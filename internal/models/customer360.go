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
	"errors"
	"fmt"
	"time"
)

// ErrInvariant marks a record that violates a generator invariant. It is a
// programmer error, never a runtime condition.
var ErrInvariant = errors.New("invariant violation")

// Record is implemented by every generated row type.
type Record interface {
	Validate() error
}

// MustValid panics when a freshly built record breaks an invariant.
func MustValid[T Record](r T) T {
	if err := r.Validate(); err != nil {
		panic(fmt.Errorf("%w: %v", ErrInvariant, err))
	}
	return r
}

// Customer represents a Customer 360 customer
type Customer struct {
	CustomerId       string    `parquet:"customer_id"`
	Email            string    `parquet:"email"`
	Name             string    `parquet:"name"`
	Segment          Segment   `parquet:"segment"`
	Ltv              float64   `parquet:"ltv"`
	RegistrationDate time.Time `parquet:"registration_date,timestamp(millisecond)"`
	CreatedAt        time.Time `parquet:"created_at,timestamp(millisecond)"`
}

func (c Customer) Validate() error {
	if c.CustomerId == "" || c.Email == "" {
		return fmt.Errorf("customer: empty id or email")
	}
	if err := checkEnum("customer.segment", c.Segment, AllSegments); err != nil {
		return err
	}
	if c.Ltv < 0 {
		return fmt.Errorf("customer %s: negative ltv %v", c.CustomerId, c.Ltv)
	}
	return nil
}

// Product represents a catalog entry shared by all customers
type Product struct {
	ProductId  string    `parquet:"product_id"`
	Name       string    `parquet:"name"`
	Category   Category  `parquet:"category"`
	Brand      string    `parquet:"brand"`
	Price      float64   `parquet:"price"`
	LaunchDate time.Time `parquet:"launch_date,timestamp(millisecond)"`
	CreatedAt  time.Time `parquet:"created_at,timestamp(millisecond)"`
}

func (p Product) Validate() error {
	if p.ProductId == "" {
		return fmt.Errorf("product: empty id")
	}
	if err := checkEnum("product.category", p.Category, AllCategories); err != nil {
		return err
	}
	if p.Price <= 0 {
		return fmt.Errorf("product %s: price %v must be positive", p.ProductId, p.Price)
	}
	return nil
}

// Transaction links one customer to one product
type Transaction struct {
	TransactionId string            `parquet:"transaction_id"`
	CustomerId    string            `parquet:"customer_id"`
	ProductId     string            `parquet:"product_id"`
	Amount        float64           `parquet:"amount"`
	Quantity      int32             `parquet:"quantity"`
	Timestamp     time.Time         `parquet:"timestamp,timestamp(millisecond)"`
	Channel       Channel           `parquet:"channel"`
	Status        TransactionStatus `parquet:"status"`
}

func (t Transaction) Validate() error {
	if t.TransactionId == "" || t.CustomerId == "" || t.ProductId == "" {
		return fmt.Errorf("transaction: empty id or foreign key")
	}
	if t.Amount <= 0 {
		return fmt.Errorf("transaction %s: amount %v must be positive", t.TransactionId, t.Amount)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("transaction %s: quantity %d must be positive", t.TransactionId, t.Quantity)
	}
	if err := checkEnum("transaction.channel", t.Channel, AllChannels); err != nil {
		return err
	}
	return checkEnum("transaction.status", t.Status, AllTransactionStatuses)
}

// ValidateAgainst checks the temporal invariant against the owning customer.
func (t Transaction) ValidateAgainst(c Customer) error {
	if t.CustomerId != c.CustomerId {
		return fmt.Errorf("transaction %s: customer %s does not own it", t.TransactionId, c.CustomerId)
	}
	if t.Timestamp.Before(c.RegistrationDate) {
		return fmt.Errorf("transaction %s: timestamp %s precedes registration %s",
			t.TransactionId, t.Timestamp.Format(time.RFC3339), c.RegistrationDate.Format(time.RFC3339))
	}
	return nil
}

// Interaction is a browsing or support event
type Interaction struct {
	InteractionId string          `parquet:"interaction_id"`
	CustomerId    string          `parquet:"customer_id"`
	ProductId     string          `parquet:"product_id"`
	Type          InteractionType `parquet:"type"`
	Timestamp     time.Time       `parquet:"timestamp,timestamp(millisecond)"`
	Duration      int32           `parquet:"duration"`
	Device        DeviceKind      `parquet:"device"`
	SessionId     string          `parquet:"session_id"`
}

func (i Interaction) Validate() error {
	if i.InteractionId == "" || i.CustomerId == "" || i.ProductId == "" || i.SessionId == "" {
		return fmt.Errorf("interaction: empty id, session or foreign key")
	}
	if i.Duration < 0 {
		return fmt.Errorf("interaction %s: negative duration", i.InteractionId)
	}
	if err := checkEnum("interaction.type", i.Type, AllInteractionTypes); err != nil {
		return err
	}
	return checkEnum("interaction.device", i.Device, AllDeviceKinds)
}
