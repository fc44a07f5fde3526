// Package metrics provides Prometheus metrics for the card manager.
// Scrape these at /metrics.
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/internal/models"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardfolio_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Sale metrics
	SalesRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_sales_recorded_total",
			Help: "Total number of sales recorded",
		},
	)

	SalesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_sales_deleted_total",
			Help: "Total number of sales deleted (quantity restored)",
		},
	)

	ConcurrencyConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_concurrency_conflicts_total",
			Help: "Writes rejected because the version token was stale",
		},
	)

	// Undo/redo metrics
	UndoOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_undo_operations_total",
			Help: "Undo attempts by result",
		},
		[]string{"result"}, // "ok" or "failed"
	)

	RedoOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_redo_operations_total",
			Help: "Redo attempts by result",
		},
		[]string{"result"},
	)

	// CSV import metrics
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_import_rows_total",
			Help: "CSV import rows by result",
		},
		[]string{"result"}, // "ok" or "error"
	)

	// PokéAPI client metrics
	PokeAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_pokeapi_requests_total",
			Help: "PokéAPI requests by HTTP status",
		},
		[]string{"status"},
	)

	PokeAPICacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_pokeapi_cache_hits_total",
			Help: "PokéAPI lookups served from the cache",
		},
	)

	PokeAPICacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_pokeapi_cache_misses_total",
			Help: "PokéAPI lookups that went to the network",
		},
	)

	// Collection metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_collection_cards_total",
			Help: "Total number of copies in the collection",
		},
	)

	CollectionValue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_collection_value",
			Help: "Total estimated value of the collection",
		},
	)

	SnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_value_snapshots_total",
			Help: "Daily value snapshots recorded",
		},
	)
)

// UpdateCollectionMetrics refreshes the collection gauges from the
// database. Failures are logged and skipped; gauges keep their last value.
func UpdateCollectionMetrics(db *gorm.DB) {
	var cards []models.Card
	if err := db.Find(&cards).Error; err != nil {
		slog.Warn("collection metrics refresh failed", slog.Any("error", err))
		return
	}

	copies := 0
	value := decimal.Zero
	for i := range cards {
		copies += cards[i].Quantity
		value = value.Add(cards[i].TotalValue())
	}

	CollectionCardsTotal.Set(float64(copies))
	CollectionValue.Set(value.InexactFloat64())
}
