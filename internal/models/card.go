package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card is a single catalogued item in the collection with acquisition and
// current valuation data. Version is the optimistic-concurrency token: it
// starts at 1 and advances on every committed mutation.
type Card struct {
	ID            uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string          `json:"name" gorm:"not null;index"`
	SetName       string          `json:"set" gorm:"column:set_name;not null;index"`
	Number        string          `json:"number" gorm:"not null;index"`
	Rarity        string          `json:"rarity"`
	Language      string          `json:"language"`
	Condition     string          `json:"condition"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2)"`
	PurchaseDate  *time.Time      `json:"purchase_date"`
	Source        string          `json:"source"`
	CurrentPrice  decimal.Decimal `json:"current_price" gorm:"type:decimal(12,2)"`
	Quantity      int             `json:"quantity" gorm:"default:1"`
	Version       int             `json:"version" gorm:"not null;default:1"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TotalValue is current price times quantity on hand. Derived, never stored.
func (c *Card) TotalValue() decimal.Decimal {
	return c.CurrentPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// EstimatedProfit is the unrealized gain over the purchase cost of the
// copies still on hand.
func (c *Card) EstimatedProfit() decimal.Decimal {
	invested := c.PurchasePrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
	return c.TotalValue().Sub(invested)
}

// ROI is (current - purchase) / purchase * 100, defined as 0 when the
// purchase price is 0.
func (c *Card) ROI() decimal.Decimal {
	if c.PurchasePrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return c.CurrentPrice.Sub(c.PurchasePrice).
		Div(c.PurchasePrice).
		Mul(decimal.NewFromInt(100))
}

// CardPage is one page of a card listing.
type CardPage struct {
	Cards      []Card `json:"cards"`
	TotalCount int64  `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	HasMore    bool   `json:"has_more"`
}
