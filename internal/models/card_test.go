package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCardTotalValue(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		expected string
	}{
		{"single copy", "12.50", 1, "12.50"},
		{"multiple copies", "12.50", 4, "50.00"},
		{"zero quantity", "12.50", 0, "0.00"},
		{"zero price", "0", 3, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Card{CurrentPrice: dec(tt.price), Quantity: tt.quantity}
			if got := card.TotalValue(); !got.Equal(dec(tt.expected)) {
				t.Errorf("TotalValue() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCardEstimatedProfit(t *testing.T) {
	tests := []struct {
		name     string
		purchase string
		current  string
		quantity int
		expected string
	}{
		{"gain", "10.00", "15.00", 2, "10.00"},
		{"loss", "10.00", "7.50", 1, "-2.50"},
		{"flat", "10.00", "10.00", 3, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Card{
				PurchasePrice: dec(tt.purchase),
				CurrentPrice:  dec(tt.current),
				Quantity:      tt.quantity,
			}
			if got := card.EstimatedProfit(); !got.Equal(dec(tt.expected)) {
				t.Errorf("EstimatedProfit() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCardROI(t *testing.T) {
	tests := []struct {
		name     string
		purchase string
		current  string
		expected string
	}{
		{"doubled", "10.00", "20.00", "100"},
		{"halved", "10.00", "5.00", "-50"},
		{"zero purchase price yields zero", "0", "50.00", "0"},
		{"negative purchase price yields zero", "-1", "50.00", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Card{PurchasePrice: dec(tt.purchase), CurrentPrice: dec(tt.current)}
			if got := card.ROI(); !got.Equal(dec(tt.expected)) {
				t.Errorf("ROI() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestSaleNetProfit(t *testing.T) {
	sale := Sale{
		SalePrice:    dec("100.00"),
		Fee:          dec("10.00"),
		ShippingCost: dec("5.00"),
		Quantity:     2,
	}

	// Without the card loaded only fees and shipping are deducted.
	if got := sale.NetProfit(); !got.Equal(dec("85.00")) {
		t.Errorf("NetProfit() without card = %s, want 85.00", got)
	}

	sale.Card = &Card{PurchasePrice: dec("20.00")}
	if got := sale.NetProfit(); !got.Equal(dec("45.00")) {
		t.Errorf("NetProfit() with card = %s, want 45.00", got)
	}

	if got := sale.BalancePrice(); !got.Equal(dec("85.00")) {
		t.Errorf("BalancePrice() = %s, want 85.00", got)
	}
}
