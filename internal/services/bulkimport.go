package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/metrics"
	"github.com/cardfolio/cardfolio/internal/models"
)

// ImportResult reports the outcome of a bulk CSV import.
type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

func (r *ImportResult) IsSuccess() bool {
	return r.ErrorCount == 0
}

// BulkImportService imports cards from the CSV export format. Malformed
// rows are recorded as errors and skipped; only the successfully parsed
// batch is committed, in a single transaction.
type BulkImportService struct {
	db *gorm.DB
}

func NewBulkImportService(db *gorm.DB) *BulkImportService {
	return &BulkImportService{db: db}
}

// ImportCards reads a card CSV from r: a header row followed by rows with
// at least 12 comma-separated, quote-aware fields in the export column
// order. Name, set and number are required; unparsable prices default to
// 0, missing or invalid quantity defaults to 1.
func (s *BulkImportService) ImportCards(ctx context.Context, r io.Reader) (*ImportResult, error) {
	result := &ImportResult{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cards []models.Card
	row := 0
	for scanner.Scan() {
		row++
		line := scanner.Text()
		if row == 1 || strings.TrimSpace(line) == "" {
			continue // header
		}

		result.TotalRows++
		card, err := parseCardRow(line)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			metrics.ImportRowsTotal.WithLabelValues("error").Inc()
			continue
		}
		cards = append(cards, *card)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(cards) > 0 {
		if err := s.db.WithContext(ctx).Create(&cards).Error; err != nil {
			return nil, fmt.Errorf("insert imported cards: %w", err)
		}
		result.SuccessCount = len(cards)
		metrics.ImportRowsTotal.WithLabelValues("ok").Add(float64(len(cards)))
	}

	slog.Info("bulk import finished",
		slog.Int("total", result.TotalRows),
		slog.Int("imported", result.SuccessCount),
		slog.Int("errors", result.ErrorCount))
	return result, nil
}

// parseCardRow maps one CSV line onto a card. Column order follows the
// export: Id, Nome, Set, Numero, Rarità, Lingua, Condizione,
// PrezzoAcquisto, DataAcquisto, Fonte, PrezzoAttuale, Quantità, ...
// The Id and derived columns are ignored.
func parseCardRow(line string) (*models.Card, error) {
	fields := splitCSVLine(line)
	if len(fields) < 12 {
		return nil, fmt.Errorf("not enough columns (%d, need at least 12)", len(fields))
	}

	card := &models.Card{
		Name:      strings.TrimSpace(fields[1]),
		SetName:   strings.TrimSpace(fields[2]),
		Number:    strings.TrimSpace(fields[3]),
		Rarity:    strings.TrimSpace(fields[4]),
		Language:  strings.TrimSpace(fields[5]),
		Condition: strings.TrimSpace(fields[6]),
		Source:    strings.TrimSpace(fields[9]),
		Version:   1,
	}

	if card.Name == "" || card.SetName == "" || card.Number == "" {
		return nil, fmt.Errorf("missing required fields (name, set, number)")
	}

	card.PurchasePrice = parseDecimalOrZero(fields[7])
	card.CurrentPrice = parseDecimalOrZero(fields[10])

	if date := strings.TrimSpace(fields[8]); date != "" {
		if parsed, err := parseDate(date); err == nil {
			card.PurchaseDate = &parsed
		}
	}

	card.Quantity = 1
	if qty, err := strconv.Atoi(strings.TrimSpace(fields[11])); err == nil && qty > 0 {
		card.Quantity = qty
	}

	return card, nil
}

func parseDecimalOrZero(field string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(field))
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func parseDate(field string) (time.Time, error) {
	for _, layout := range []string{csvDateLayout, "2006-01-02 15:04:05", "02/01/2006"} {
		if parsed, err := time.Parse(layout, field); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", field)
}

// splitCSVLine splits one line on commas, honoring double-quoted fields
// with doubled-quote escapes. Quoted fields may contain commas.
func splitCSVLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, current.String())

	return fields
}
