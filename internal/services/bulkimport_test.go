package services

import (
	"context"
	"strings"
	"testing"

	"github.com/cardfolio/cardfolio/internal/models"
)

func TestImportCards(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkImportService(db)

	csv := cardsCSVHeader + "\n" +
		`1,"Charizard","Base Set","4/102","Holo","EN","NM",100.00,2024-06-01,"eBay",300.00,2,600.00,400.00,200.00` + "\n" +
		`2,"Pikachu, Promo","Wizards","1","","JP","",abc,,"",15.50,,31.00,31.00,0.00` + "\n"

	result, err := svc.ImportCards(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCards: %v", err)
	}
	if result.TotalRows != 2 || result.SuccessCount != 2 || result.ErrorCount != 0 {
		t.Fatalf("result = %+v, want 2 clean rows", result)
	}

	var cards []models.Card
	if err := db.Order("id").Find(&cards).Error; err != nil {
		t.Fatalf("load cards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("imported %d cards, want 2", len(cards))
	}

	first := cards[0]
	if first.Name != "Charizard" || first.Quantity != 2 {
		t.Errorf("first card = %q qty %d", first.Name, first.Quantity)
	}
	if !first.PurchasePrice.Equal(dec("100.00")) {
		t.Errorf("first purchase price = %s, want 100.00", first.PurchasePrice)
	}
	if first.PurchaseDate == nil || first.PurchaseDate.Format("2006-01-02") != "2024-06-01" {
		t.Error("first purchase date not parsed")
	}
	if first.Version != 1 {
		t.Errorf("imported version = %d, want 1", first.Version)
	}

	second := cards[1]
	if second.Name != "Pikachu, Promo" {
		t.Errorf("quoted comma name = %q", second.Name)
	}
	// Unparsable price defaults to 0, blank quantity to 1.
	if !second.PurchasePrice.IsZero() {
		t.Errorf("second purchase price = %s, want 0", second.PurchasePrice)
	}
	if second.Quantity != 1 {
		t.Errorf("second quantity = %d, want 1", second.Quantity)
	}
	if second.PurchaseDate != nil {
		t.Error("second purchase date should be unset")
	}
}

func TestImportCardsRowErrors(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkImportService(db)

	csv := cardsCSVHeader + "\n" +
		`1,"","Base Set","4/102","","","",0,,"",0,1` + "\n" + // missing name
		`2,"Bulbasaur","Base Set"` + "\n" + // short row
		"\n" + // blank lines are skipped entirely
		`3,"Squirtle","Base Set","63/102","","","",5.00,,"",8.00,1` + "\n"

	result, err := svc.ImportCards(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCards: %v", err)
	}

	if result.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", result.TotalRows)
	}
	if result.SuccessCount != 1 || result.ErrorCount != 2 {
		t.Errorf("result = %+v, want 1 success and 2 errors", result)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2 entries", result.Errors)
	}
	// Errors are row-scoped so the caller can point at the bad line.
	if !strings.Contains(result.Errors[0], "row 2") {
		t.Errorf("first error = %q, want row reference", result.Errors[0])
	}

	// The good row still committed.
	var count int64
	if err := db.Model(&models.Card{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("stored cards = %d, want 1", count)
	}
}

func TestImportCardsEmptyFile(t *testing.T) {
	svc := NewBulkImportService(newTestDB(t))

	result, err := svc.ImportCards(context.Background(), strings.NewReader(cardsCSVHeader+"\n"))
	if err != nil {
		t.Fatalf("ImportCards: %v", err)
	}
	if result.TotalRows != 0 || !result.IsSuccess() {
		t.Errorf("result = %+v, want empty success", result)
	}
}

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-06-01", "2024-06-01"},
		{"2024-06-01 15:04:05", "2024-06-01"},
		{"01/06/2024", "2024-06-01"}, // day first
	}

	for _, tt := range tests {
		parsed, err := parseDate(tt.in)
		if err != nil {
			t.Errorf("parseDate(%q): %v", tt.in, err)
			continue
		}
		if got := parsed.Format("2006-01-02"); got != tt.want {
			t.Errorf("parseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := parseDate("June 1st"); err == nil {
		t.Error("parseDate accepted an unrecognized layout")
	}
}

func TestSplitCSVLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `"a,b",c`, []string{"a,b", "c"}},
		{"doubled quote", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"empty fields", ",,", []string{"", "", ""}},
		{"quoted empty", `"",""`, []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitCSVLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("splitCSVLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
