package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/metrics"
	"github.com/cardfolio/cardfolio/internal/models"
)

// SnapshotService records one collection-value snapshot per day for the
// dashboard history chart. The scheduler calls TakeDailySnapshot; taking a
// second snapshot on the same day is a no-op.
type SnapshotService struct {
	db *gorm.DB
}

func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// TakeDailySnapshot records today's collection value unless a snapshot
// for today already exists.
func (s *SnapshotService) TakeDailySnapshot(ctx context.Context) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	exists, err := s.hasSnapshotForDate(ctx, today)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	var cards []models.Card
	if err := s.db.WithContext(ctx).Find(&cards).Error; err != nil {
		return fmt.Errorf("load cards: %w", err)
	}

	var sales []models.Sale
	if err := s.db.WithContext(ctx).Find(&sales).Error; err != nil {
		return fmt.Errorf("load sales: %w", err)
	}

	value, invested := decimal.Zero, decimal.Zero
	copies := 0
	for i := range cards {
		value = value.Add(cards[i].TotalValue())
		invested = invested.Add(cards[i].PurchasePrice.Mul(decimal.NewFromInt(int64(cards[i].Quantity))))
		copies += cards[i].Quantity
	}

	revenue := decimal.Zero
	for i := range sales {
		revenue = revenue.Add(sales[i].SalePrice)
	}

	snapshot := models.ValueSnapshot{
		SnapshotDate:    today,
		CollectionValue: value,
		TotalInvested:   invested,
		TotalRevenue:    revenue,
		CardCount:       copies,
	}
	if err := s.db.WithContext(ctx).Create(&snapshot).Error; err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	metrics.SnapshotsTotal.Inc()
	metrics.UpdateCollectionMetrics(s.db)
	slog.Info("value snapshot recorded",
		slog.String("date", today.Format("2006-01-02")),
		slog.String("value", value.String()))
	return nil
}

func (s *SnapshotService) hasSnapshotForDate(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ValueSnapshot{}).
		Where("snapshot_date >= ? AND snapshot_date < ?", date, date.Add(24*time.Hour)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count snapshots: %w", err)
	}
	return count > 0, nil
}

// History returns snapshots inside the requested window: "week", "month",
// "year" or "all" (the default for unknown values), oldest first.
func (s *SnapshotService) History(ctx context.Context, period string) ([]models.ValueSnapshot, error) {
	query := s.db.WithContext(ctx).Model(&models.ValueSnapshot{})

	now := time.Now()
	switch period {
	case "week":
		query = query.Where("snapshot_date >= ?", now.AddDate(0, 0, -7))
	case "month":
		query = query.Where("snapshot_date >= ?", now.AddDate(0, -1, 0))
	case "year":
		query = query.Where("snapshot_date >= ?", now.AddDate(-1, 0, 0))
	}

	var snapshots []models.ValueSnapshot
	if err := query.Order("snapshot_date ASC").Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	return snapshots, nil
}
