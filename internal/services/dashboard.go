package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/models"
)

// DashboardStats aggregates the collection and the sales ledger for the
// main dashboard. Everything is computed at query time, never cached.
type DashboardStats struct {
	CardCount       int64           `json:"card_count"`
	TotalQuantity   int             `json:"total_quantity"`
	CollectionValue decimal.Decimal `json:"collection_value"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	EstimatedProfit decimal.Decimal `json:"estimated_profit"`
	SaleCount       int64           `json:"sale_count"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalNetProfit  decimal.Decimal `json:"total_net_profit"`
	ProfitBySet     []SetProfit     `json:"profit_by_set"`
	MonthlySales    []MonthlySales  `json:"monthly_sales"`
}

// SetProfit is the estimated (unrealized) profit of one set.
type SetProfit struct {
	Set    string          `json:"set"`
	Profit decimal.Decimal `json:"profit"`
}

// MonthlySales is realized revenue and net profit for one calendar month.
type MonthlySales struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

const topSetsLimit = 10

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}

	var sales []models.Sale
	if err := s.db.WithContext(ctx).Preload("Card").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	stats := &DashboardStats{
		CardCount:       int64(len(cards)),
		SaleCount:       int64(len(sales)),
		CollectionValue: decimal.Zero,
		TotalInvested:   decimal.Zero,
		EstimatedProfit: decimal.Zero,
		TotalRevenue:    decimal.Zero,
		TotalNetProfit:  decimal.Zero,
	}

	profitBySet := make(map[string]decimal.Decimal)
	for i := range cards {
		c := &cards[i]
		stats.TotalQuantity += c.Quantity
		stats.CollectionValue = stats.CollectionValue.Add(c.TotalValue())
		stats.TotalInvested = stats.TotalInvested.Add(
			c.PurchasePrice.Mul(decimal.NewFromInt(int64(c.Quantity))))
		stats.EstimatedProfit = stats.EstimatedProfit.Add(c.EstimatedProfit())
		profitBySet[c.SetName] = profitBySet[c.SetName].Add(c.EstimatedProfit())
	}

	monthly := make(map[string]*MonthlySales)
	for i := range sales {
		sl := &sales[i]
		stats.TotalRevenue = stats.TotalRevenue.Add(sl.SalePrice)
		stats.TotalNetProfit = stats.TotalNetProfit.Add(sl.NetProfit())

		month := sl.SaleDate.Format("2006-01")
		m, ok := monthly[month]
		if !ok {
			m = &MonthlySales{Month: month, Revenue: decimal.Zero, Profit: decimal.Zero}
			monthly[month] = m
		}
		m.Revenue = m.Revenue.Add(sl.SalePrice)
		m.Profit = m.Profit.Add(sl.NetProfit())
	}

	stats.ProfitBySet = topSets(profitBySet, topSetsLimit)
	stats.MonthlySales = sortedMonths(monthly)
	return stats, nil
}

func topSets(profitBySet map[string]decimal.Decimal, limit int) []SetProfit {
	sets := make([]SetProfit, 0, len(profitBySet))
	for set, profit := range profitBySet {
		sets = append(sets, SetProfit{Set: set, Profit: profit})
	}
	sort.Slice(sets, func(i, j int) bool {
		if !sets[i].Profit.Equal(sets[j].Profit) {
			return sets[i].Profit.GreaterThan(sets[j].Profit)
		}
		return sets[i].Set < sets[j].Set
	})
	if len(sets) > limit {
		sets = sets[:limit]
	}
	return sets
}

func sortedMonths(monthly map[string]*MonthlySales) []MonthlySales {
	months := make([]MonthlySales, 0, len(monthly))
	for _, m := range monthly {
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}
