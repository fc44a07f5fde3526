package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValueSnapshot is a daily record of the collection's worth, used for the
// dashboard history chart.
type ValueSnapshot struct {
	ID              uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotDate    time.Time       `json:"snapshot_date" gorm:"index;not null"`
	CollectionValue decimal.Decimal `json:"collection_value" gorm:"type:decimal(14,2)"`
	TotalInvested   decimal.Decimal `json:"total_invested" gorm:"type:decimal(14,2)"`
	TotalRevenue    decimal.Decimal `json:"total_revenue" gorm:"type:decimal(14,2)"`
	CardCount       int             `json:"card_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ValueHistoryResponse wraps a snapshot series with the requested window.
type ValueHistoryResponse struct {
	Snapshots []ValueSnapshot `json:"snapshots"`
	Period    string          `json:"period"`
}
