package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/database"
	"github.com/cardfolio/cardfolio/internal/models"
)

var testDBCounter atomic.Int64

// newTestDB opens a uniquely named shared in-memory database. The single
// pooled connection keeps it alive for the duration of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedCard(t *testing.T, repo *CardRepository, name, set, number string, quantity int) *models.Card {
	t.Helper()

	card := &models.Card{
		Name:          name,
		SetName:       set,
		Number:        number,
		PurchasePrice: dec("10.00"),
		CurrentPrice:  dec("25.00"),
		Quantity:      quantity,
	}
	if err := repo.Add(context.Background(), card); err != nil {
		t.Fatalf("seed card %q: %v", name, err)
	}
	return card
}
