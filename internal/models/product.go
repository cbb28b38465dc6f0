// internal/models/product.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is deactivated via Active rather than deleted so that past
// orders keep pointing at a real row.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    string          `json:"image_url" gorm:"size:1024"`
	Inventory   *int            `json:"inventory"` // nil means unlimited stock
	Active      bool            `json:"active" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) HasUnlimitedInventory() bool {
	return p.Inventory == nil
}

// UnitAmount is the price in the smallest unit of currency.
func (p *Product) UnitAmount(currency string) int64 {
	return ToMinorUnits(p.Price, currency)
}
