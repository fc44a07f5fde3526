package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/models"
)

// SaleRepository owns CRUD and paged search over sales. Creating or
// deleting a sale adjusts the referenced card's quantity in the same
// transaction; both changes commit or neither does.
type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Add records a sale and decrements the card's quantity atomically.
// Fails with ErrNotFound when the card is missing, ErrInsufficientQuantity
// when fewer copies are on hand than requested, and ErrConcurrencyConflict
// when the card changed between load and commit. No partial state survives
// a failure. The assigned id and version token are written back into sale.
func (r *SaleRepository) Add(ctx context.Context, sale *models.Sale) error {
	if err := validateSale(sale); err != nil {
		return err
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now()
	}
	if sale.Version < 1 {
		sale.Version = 1
	}
	sale.Card = nil // association writes stay out of the insert

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card models.Card
		err := tx.First(&card, sale.CardID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("card %d: %w", sale.CardID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load card %d: %w", sale.CardID, err)
		}

		if card.Quantity < sale.Quantity {
			return fmt.Errorf("card %d has %d copies, sale wants %d: %w",
				card.ID, card.Quantity, sale.Quantity, ErrInsufficientQuantity)
		}

		newQty := card.Quantity - sale.Quantity
		if newQty < 0 {
			// Unreachable after the check above; kept as a second line of
			// defense so quantity can never go negative.
			slog.Warn("quantity clamp engaged",
				slog.Uint64("card_id", uint64(card.ID)),
				slog.Int("quantity", card.Quantity),
				slog.Int("sold", sale.Quantity))
			newQty = 0
		}

		res := tx.Model(&models.Card{}).
			Where("id = ? AND version = ?", card.ID, card.Version).
			Updates(map[string]any{
				"quantity": newQty,
				"version":  gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("decrement card %d: %w", card.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("card %d: %w", card.ID, ErrConcurrencyConflict)
		}

		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		return nil
	})
}

// Delete removes a sale and restores the card's quantity atomically, with
// the same all-or-nothing and conflict-abort guarantees as Add.
func (r *SaleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		err := tx.First(&sale, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("sale %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load sale %d: %w", id, err)
		}

		var card models.Card
		err = tx.First(&card, sale.CardID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("card %d: %w", sale.CardID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load card %d: %w", sale.CardID, err)
		}

		res := tx.Model(&models.Card{}).
			Where("id = ? AND version = ?", card.ID, card.Version).
			Updates(map[string]any{
				"quantity": card.Quantity + sale.Quantity,
				"version":  gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("restore card %d: %w", card.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("card %d: %w", card.ID, ErrConcurrencyConflict)
		}

		if err := tx.Delete(&models.Sale{}, id).Error; err != nil {
			return fmt.Errorf("delete sale %d: %w", id, err)
		}
		return nil
	})
}

// Update applies a plain optimistic-concurrency update of the sale's
// fields. It never touches the card's quantity: quantity changes flow only
// through Add and Delete. The card reference is immutable.
func (r *SaleRepository) Update(ctx context.Context, sale *models.Sale) error {
	if err := validateSale(sale); err != nil {
		return err
	}

	var stored models.Sale
	err := r.db.WithContext(ctx).First(&stored, sale.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("sale %d: %w", sale.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load sale %d: %w", sale.ID, err)
	}
	if stored.CardID != sale.CardID {
		return fmt.Errorf("sale %d cannot be reassigned to another card: %w", sale.ID, ErrValidation)
	}
	if stored.Version != sale.Version {
		return fmt.Errorf("sale %d: stored token %d, caller token %d: %w",
			sale.ID, stored.Version, sale.Version, ErrConcurrencyConflict)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ? AND version = ?", sale.ID, sale.Version).
		Updates(map[string]any{
			"sale_date":     sale.SaleDate,
			"sale_price":    sale.SalePrice,
			"fee":           sale.Fee,
			"shipping_cost": sale.ShippingCost,
			"quantity":      sale.Quantity,
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("update sale %d: %w", sale.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sale %d: %w", sale.ID, ErrConcurrencyConflict)
	}

	sale.Version++
	return nil
}

func (r *SaleRepository) GetByID(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).Preload("Card").First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load sale %d: %w", id, err)
	}
	return &sale, nil
}

// GetPaged returns one page of sales ordered by sale date descending with
// id descending as the stable tie-break. search matches the referenced
// card's name, set or number; saleDate, when set, filters to that calendar
// day.
func (r *SaleRepository) GetPaged(ctx context.Context, page, pageSize int, search string, saleDate *time.Time) (*models.SalePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	query := r.searchQuery(ctx, search, saleDate)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count sales: %w", err)
	}

	var sales []models.Sale
	err := query.
		Preload("Card").
		Order("sale_date DESC, sales.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return &models.SalePage{
		Sales:      sales,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		HasMore:    int64(page*pageSize) < total,
	}, nil
}

func (r *SaleRepository) searchQuery(ctx context.Context, search string, saleDate *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if strings.TrimSpace(search) != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
		query = query.
			Joins("JOIN cards ON cards.id = sales.card_id").
			Where("LOWER(cards.name) LIKE ? OR LOWER(cards.set_name) LIKE ? OR LOWER(cards.number) LIKE ?",
				like, like, like)
	}
	if saleDate != nil {
		day := time.Date(saleDate.Year(), saleDate.Month(), saleDate.Day(), 0, 0, 0, 0, saleDate.Location())
		query = query.Where("sale_date >= ? AND sale_date < ?", day, day.Add(24*time.Hour))
	}
	return query
}

// TotalRevenue sums the sale price of every sale, computed at query time.
func (r *SaleRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var sales []models.Sale
	if err := r.db.WithContext(ctx).Find(&sales).Error; err != nil {
		return decimal.Zero, fmt.Errorf("list sales: %w", err)
	}
	total := decimal.Zero
	for i := range sales {
		total = total.Add(sales[i].SalePrice)
	}
	return total, nil
}

// TotalNetProfit sums the net profit of every sale, including each sale's
// purchase-cost component, computed at query time.
func (r *SaleRepository) TotalNetProfit(ctx context.Context) (decimal.Decimal, error) {
	var sales []models.Sale
	if err := r.db.WithContext(ctx).Preload("Card").Find(&sales).Error; err != nil {
		return decimal.Zero, fmt.Errorf("list sales: %w", err)
	}
	total := decimal.Zero
	for i := range sales {
		total = total.Add(sales[i].NetProfit())
	}
	return total, nil
}

func validateSale(sale *models.Sale) error {
	if sale.CardID == 0 {
		return fmt.Errorf("card reference is required: %w", ErrValidation)
	}
	if sale.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	if !sale.SalePrice.IsPositive() {
		return fmt.Errorf("sale price must be greater than zero: %w", ErrValidation)
	}
	if sale.Fee.IsNegative() {
		return fmt.Errorf("fee cannot be negative: %w", ErrValidation)
	}
	if sale.ShippingCost.IsNegative() {
		return fmt.Errorf("shipping cost cannot be negative: %w", ErrValidation)
	}
	return nil
}
