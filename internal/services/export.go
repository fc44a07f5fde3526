package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/database"
	"github.com/cardfolio/cardfolio/internal/models"
)

const csvDateLayout = "2006-01-02"

// ExportService writes the collection and sales ledgers as CSV and backs
// up the database file. The CSV layout is a fixed external format: text
// fields are always quoted (doubled-quote escaping), dates are yyyy-MM-dd
// or blank, derived columns are included.
type ExportService struct {
	db     *gorm.DB
	dbPath string
}

func NewExportService(db *gorm.DB, dbPath string) *ExportService {
	return &ExportService{db: db, dbPath: dbPath}
}

// ExportCardsCSV streams every card to w, one row per card.
func (s *ExportService) ExportCardsCSV(ctx context.Context, w io.Writer) error {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Order("id").Find(&cards).Error; err != nil {
		return fmt.Errorf("load cards: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("Id,Nome,Set,Numero,Rarità,Lingua,Condizione,PrezzoAcquisto,DataAcquisto,Fonte,PrezzoAttuale,Quantità,ValoreTotale,ProfittoStimato,ROI\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range cards {
		c := &cards[i]
		date := ""
		if c.PurchaseDate != nil {
			date = c.PurchaseDate.Format(csvDateLayout)
		}
		row := fmt.Sprintf("%d,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%d,%s,%s,%s\n",
			c.ID,
			quoteCSV(c.Name),
			quoteCSV(c.SetName),
			quoteCSV(c.Number),
			quoteCSV(c.Rarity),
			quoteCSV(c.Language),
			quoteCSV(c.Condition),
			c.PurchasePrice.String(),
			date,
			quoteCSV(c.Source),
			c.CurrentPrice.String(),
			c.Quantity,
			c.TotalValue().String(),
			c.EstimatedProfit().String(),
			c.ROI().StringFixed(2),
		)
		if _, err := bw.WriteString(row); err != nil {
			return fmt.Errorf("write card row: %w", err)
		}
	}

	return bw.Flush()
}

// ExportSalesCSV streams every sale to w with its card's name and set.
func (s *ExportService) ExportSalesCSV(ctx context.Context, w io.Writer) error {
	var sales []models.Sale
	if err := s.db.WithContext(ctx).Preload("Card").Order("id").Find(&sales).Error; err != nil {
		return fmt.Errorf("load sales: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("Id,CardId,NomeCarta,Set,DataVendita,PrezzoVendita,Fee,CostoSpedizione,Quantità,ProfittoNetto\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range sales {
		sl := &sales[i]
		cardName, cardSet := "", ""
		if sl.Card != nil {
			cardName = sl.Card.Name
			cardSet = sl.Card.SetName
		}
		row := fmt.Sprintf("%d,%d,%s,%s,%s,%s,%s,%s,%d,%s\n",
			sl.ID,
			sl.CardID,
			quoteCSV(cardName),
			quoteCSV(cardSet),
			sl.SaleDate.Format(csvDateLayout),
			sl.SalePrice.String(),
			sl.Fee.String(),
			sl.ShippingCost.String(),
			sl.Quantity,
			sl.NetProfit().String(),
		)
		if _, err := bw.WriteString(row); err != nil {
			return fmt.Errorf("write sale row: %w", err)
		}
	}

	return bw.Flush()
}

// BackupDatabase copies the live database file to destPath.
func (s *ExportService) BackupDatabase(_ context.Context, destPath string) error {
	if strings.TrimSpace(destPath) == "" {
		return fmt.Errorf("backup path is required")
	}
	return database.Backup(s.db, s.dbPath, destPath)
}

// DefaultBackupName builds a timestamped backup filename.
func DefaultBackupName(now time.Time) string {
	return fmt.Sprintf("cards-backup-%s.db", now.Format("20060102-150405"))
}

// quoteCSV wraps value in double quotes, doubling any embedded quote.
// Text fields are always quoted in this format, even when empty.
func quoteCSV(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
