// Package reports builds downloadable spreadsheet reports of the
// collection and the sales ledger.
package reports

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/models"
)

type Generator struct {
	db *gorm.DB
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{db: db}
}

// Generate builds a two-sheet workbook (Inventory, Sales) and returns the
// file bytes.
func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	var cards []models.Card
	if err := g.db.WithContext(ctx).Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}

	var sales []models.Sale
	if err := g.db.WithContext(ctx).Preload("Card").Order("id").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("closing report file", slog.Any("error", err))
		}
	}()

	if err := g.fillInventorySheet(f, cards); err != nil {
		return nil, err
	}
	if err := g.fillSalesSheet(f, sales); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) fillInventorySheet(f *excelize.File, cards []models.Card) error {
	const sheet = "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Id", "Name", "Set", "Number", "Rarity", "Language", "Condition",
		"Purchase Price", "Purchase Date", "Source", "Current Price", "Quantity",
		"Total Value", "Estimated Profit", "ROI %"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i := range cards {
		c := &cards[i]
		date := ""
		if c.PurchaseDate != nil {
			date = c.PurchaseDate.Format("2006-01-02")
		}
		values := []any{
			c.ID, c.Name, c.SetName, c.Number, c.Rarity, c.Language, c.Condition,
			c.PurchasePrice.InexactFloat64(), date, c.Source,
			c.CurrentPrice.InexactFloat64(), c.Quantity,
			c.TotalValue().InexactFloat64(), c.EstimatedProfit().InexactFloat64(),
			c.ROI().InexactFloat64(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write inventory row %d: %w", i+2, err)
			}
		}
	}
	return nil
}

func (g *Generator) fillSalesSheet(f *excelize.File, sales []models.Sale) error {
	const sheet = "Sales"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := []string{"Id", "Card Id", "Card Name", "Set", "Sale Date", "Sale Price",
		"Fee", "Shipping", "Quantity", "Net Profit"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i := range sales {
		s := &sales[i]
		cardName, cardSet := "", ""
		if s.Card != nil {
			cardName = s.Card.Name
			cardSet = s.Card.SetName
		}
		values := []any{
			s.ID, s.CardID, cardName, cardSet,
			s.SaleDate.Format("2006-01-02"),
			s.SalePrice.InexactFloat64(), s.Fee.InexactFloat64(),
			s.ShippingCost.InexactFloat64(), s.Quantity,
			s.NetProfit().InexactFloat64(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write sales row %d: %w", i+2, err)
			}
		}
	}
	return nil
}
