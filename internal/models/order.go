// internal/models/order.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order is written exactly once, by the payment webhook, and never mutated.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	StripeSessionID string          `json:"stripe_session_id" gorm:"size:255;not null;uniqueIndex"`
	CustomerEmail   string          `json:"customer_email" gorm:"size:255"`
	CustomerName    string          `json:"customer_name" gorm:"size:255"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency        string          `json:"currency" gorm:"size:8"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null"`
	ShippingAddress *Address        `json:"shipping_address" gorm:"type:jsonb"`
	Items           CartSnapshot    `json:"items" gorm:"type:jsonb;not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CartLine references a product by value; no foreign key is enforced.
type CartLine struct {
	ProductID uint `json:"productId" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CartSnapshot is the cart as it was at the time of purchase.
type CartSnapshot []CartLine

func (c CartSnapshot) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *CartSnapshot) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	return scanJSON(value, c)
}

type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Address) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return scanJSON(value, a)
}
