package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a disposal event against a card's available quantity. The card
// reference is immutable after creation; deleting the referenced card is
// blocked while sales point at it.
type Sale struct {
	ID           uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID       uint            `json:"card_id" gorm:"not null;index"`
	Card         *Card           `json:"card,omitempty" gorm:"foreignKey:CardID;constraint:OnDelete:RESTRICT"`
	SaleDate     time.Time       `json:"sale_date" gorm:"index"`
	SalePrice    decimal.Decimal `json:"sale_price" gorm:"type:decimal(12,2)"`
	Fee          decimal.Decimal `json:"fee" gorm:"type:decimal(12,2)"`
	ShippingCost decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2)"`
	Quantity     int             `json:"quantity" gorm:"default:1"`
	Version      int             `json:"version" gorm:"not null;default:1"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NetProfit is sale price minus fee, shipping and the purchase cost of the
// sold copies. The purchase-cost component is 0 when Card is not loaded.
func (s *Sale) NetProfit() decimal.Decimal {
	profit := s.BalancePrice()
	if s.Card != nil {
		cost := s.Card.PurchasePrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
		profit = profit.Sub(cost)
	}
	return profit
}

// BalancePrice is sale price minus fee and shipping, before purchase cost.
func (s *Sale) BalancePrice() decimal.Decimal {
	return s.SalePrice.Sub(s.Fee).Sub(s.ShippingCost)
}

// SalePage is one page of a sale listing, ordered sale date descending.
type SalePage struct {
	Sales      []Sale `json:"sales"`
	TotalCount int64  `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	HasMore    bool   `json:"has_more"`
}
