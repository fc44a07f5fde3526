package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/models"
)

// DefaultPageSize is used whenever a caller passes a page size below 1.
const DefaultPageSize = 50

// CardRepository owns CRUD and paged search over cards. All writes enforce
// optimistic concurrency through the card's version token.
type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// GetAll returns every card, most recently created first.
func (r *CardRepository) GetAll(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// GetPaged returns one page of cards ordered most recently created first.
// search matches a case-insensitive substring of name, set or number.
// Page numbers below 1 clamp to 1, page sizes below 1 default to
// DefaultPageSize.
func (r *CardRepository) GetPaged(ctx context.Context, page, pageSize int, search string) (*models.CardPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	query := r.searchQuery(ctx, search)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}

	var cards []models.Card
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return &models.CardPage{
		Cards:      cards,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		HasMore:    int64(page*pageSize) < total,
	}, nil
}

// Count returns the number of cards matching search, or all cards when
// search is empty.
func (r *CardRepository) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	if err := r.searchQuery(ctx, search).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return total, nil
}

func (r *CardRepository) searchQuery(ctx context.Context, search string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Card{})
	if strings.TrimSpace(search) != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(set_name) LIKE ? OR LOWER(number) LIKE ?",
			like, like, like,
		)
	}
	return query
}

func (r *CardRepository) GetByID(ctx context.Context, id uint) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).First(&card, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load card %d: %w", id, err)
	}
	return &card, nil
}

// Add persists a new card with a freshly assigned id and version token 1.
// When the card carries an explicit id (undo re-adding a deleted card) the
// id is preserved. The assigned id and token are written back into card.
func (r *CardRepository) Add(ctx context.Context, card *models.Card) error {
	if err := validateCard(card); err != nil {
		return err
	}
	if card.Quantity < 1 {
		card.Quantity = 1
	}
	if card.Version < 1 {
		card.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// Update copies all mutable fields of card onto the stored row, never the
// version token itself, and advances the token by one. The caller's token
// must match the stored one or the write is rejected. On success the
// advanced token is written back into card.
func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	if err := validateCard(card); err != nil {
		return err
	}

	var stored models.Card
	err := r.db.WithContext(ctx).First(&stored, card.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("card %d: %w", card.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load card %d: %w", card.ID, err)
	}
	if stored.Version != card.Version {
		return fmt.Errorf("card %d: stored token %d, caller token %d: %w",
			card.ID, stored.Version, card.Version, ErrConcurrencyConflict)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Card{}).
		Where("id = ? AND version = ?", card.ID, card.Version).
		Updates(map[string]any{
			"name":           card.Name,
			"set_name":       card.SetName,
			"number":         card.Number,
			"rarity":         card.Rarity,
			"language":       card.Language,
			"condition":      card.Condition,
			"purchase_price": card.PurchasePrice,
			"purchase_date":  card.PurchaseDate,
			"source":         card.Source,
			"current_price":  card.CurrentPrice,
			"quantity":       card.Quantity,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("update card %d: %w", card.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card %d: %w", card.ID, ErrConcurrencyConflict)
	}

	card.Version++
	return nil
}

// Delete removes a card. Absent cards are a no-op; cards still referenced
// by sales are rejected.
func (r *CardRepository) Delete(ctx context.Context, id uint) error {
	var refs int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("card_id = ?", id).
		Count(&refs).Error
	if err != nil {
		return fmt.Errorf("count sales for card %d: %w", id, err)
	}
	if refs > 0 {
		return fmt.Errorf("card %d is referenced by %d sales: %w", id, refs, ErrReferentialIntegrity)
	}

	if err := r.db.WithContext(ctx).Delete(&models.Card{}, id).Error; err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	return nil
}

func validateCard(card *models.Card) error {
	if strings.TrimSpace(card.Name) == "" ||
		strings.TrimSpace(card.SetName) == "" ||
		strings.TrimSpace(card.Number) == "" {
		return fmt.Errorf("name, set and number are required: %w", ErrValidation)
	}
	if card.PurchasePrice.IsNegative() {
		return fmt.Errorf("purchase price cannot be negative: %w", ErrValidation)
	}
	if card.CurrentPrice.IsNegative() {
		return fmt.Errorf("current price cannot be negative: %w", ErrValidation)
	}
	return nil
}
