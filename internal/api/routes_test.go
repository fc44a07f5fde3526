package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/database"
	"github.com/cardfolio/cardfolio/internal/models"
	"github.com/cardfolio/cardfolio/internal/reports"
	"github.com/cardfolio/cardfolio/internal/repository"
	"github.com/cardfolio/cardfolio/internal/services"
	"github.com/cardfolio/cardfolio/internal/undoredo"
)

var testDBCounter atomic.Int64

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cards := repository.NewCardRepository(db)
	sales := repository.NewSaleRepository(db)
	log := undoredo.NewLog(cards, sales)

	return SetupRouter(Deps{
		Cards:     cards,
		Sales:     sales,
		Log:       log,
		Dashboard: services.NewDashboardService(db),
		Snapshots: services.NewSnapshotService(db),
		Export:    services.NewExportService(db, dsn),
		Importer:  services.NewBulkImportService(db),
		Reports:   reports.NewGenerator(db),
		PokeAPI:   services.NewPokeAPIClient("http://127.0.0.1:0", 100, 16),
		BackupDir: t.TempDir(),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeCard(t *testing.T, w *httptest.ResponseRecorder) models.Card {
	t.Helper()
	var card models.Card
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatalf("decode card: %v (body %s)", err, w.Body.String())
	}
	return card
}

func TestCardLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/cards", map[string]any{
		"name":     "Charizard",
		"set":      "Base Set",
		"number":   "4/102",
		"quantity": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	card := decodeCard(t, w)
	if card.ID == 0 || card.Version != 1 {
		t.Fatalf("created card = id %d version %d", card.ID, card.Version)
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cards/%d", card.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/cards/%d", card.ID), map[string]any{
		"name":     "Charizard",
		"set":      "Base Set",
		"number":   "4/102",
		"quantity": 3,
		"version":  card.Version,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", w.Code, w.Body.String())
	}
	updated := decodeCard(t, w)
	if updated.Version != 2 {
		t.Errorf("version after update = %d, want 2", updated.Version)
	}

	// Replaying the first token must conflict.
	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/cards/%d", card.ID), map[string]any{
		"name":    "Charizard",
		"set":     "Base Set",
		"number":  "4/102",
		"version": card.Version,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("stale update = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), "reload") {
		t.Errorf("conflict body lacks retry hint: %s", w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/cards/%d", card.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cards/%d", card.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestCardValidationMapsTo400(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/cards", map[string]any{"name": "No Set"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("create without set = %d, want 400", w.Code)
	}
}

func TestSaleFlowAndUndo(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/cards", map[string]any{
		"name": "Blastoise", "set": "Base Set", "number": "2/102", "quantity": 5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create card = %d", w.Code)
	}
	card := decodeCard(t, w)

	w = doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"card_id":    card.ID,
		"sale_price": "80.00",
		"quantity":   2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create sale = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cards/%d", card.ID), nil)
	if got := decodeCard(t, w); got.Quantity != 3 {
		t.Fatalf("quantity after sale = %d, want 3", got.Quantity)
	}

	// Overselling the remaining copies is a 409, not a crash.
	w = doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"card_id":    card.ID,
		"sale_price": "80.00",
		"quantity":   10,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("oversell = %d, want 409: %s", w.Code, w.Body.String())
	}

	// Undoing the sale restores the copies.
	w = doJSON(t, router, http.MethodPost, "/api/history/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cards/%d", card.ID), nil)
	if got := decodeCard(t, w); got.Quantity != 5 {
		t.Errorf("quantity after undo = %d, want 5", got.Quantity)
	}

	// And redo takes them away again.
	w = doJSON(t, router, http.MethodPost, "/api/history/redo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("redo = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cards/%d", card.ID), nil)
	if got := decodeCard(t, w); got.Quantity != 3 {
		t.Errorf("quantity after redo = %d, want 3", got.Quantity)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	router := newTestRouter(t)

	// Nothing recorded yet.
	w := doJSON(t, router, http.MethodPost, "/api/history/undo", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("undo on empty history = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/cards", map[string]any{
		"name": "Mew", "set": "Promo", "number": "8",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/history", nil)
	var status struct {
		CanUndo         bool   `json:"can_undo"`
		UndoDescription string `json:"undo_description"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.CanUndo || !strings.Contains(status.UndoDescription, "Mew") {
		t.Errorf("status = %+v", status)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/history", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/history/undo", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("undo after clear = %d, want 409", w.Code)
	}
}

func TestDeleteCardWithSalesBlocked(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/cards", map[string]any{
		"name": "Gyarados", "set": "Base Set", "number": "6/102", "quantity": 5,
	})
	card := decodeCard(t, w)

	w = doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"card_id": card.ID, "sale_price": "40.00", "quantity": 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create sale = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/cards/%d", card.ID), nil)
	if w.Code != http.StatusConflict {
		t.Errorf("delete referenced card = %d, want 409", w.Code)
	}
}

func TestExportEndpoints(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/cards", map[string]any{
		"name": "Eevee", "set": "Jungle", "number": "51/64",
	})

	w := doJSON(t, router, http.MethodGet, "/api/export/cards.csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "cards.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), `"Eevee"`) {
		t.Errorf("export body lacks the card: %s", w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/export/report.xlsx", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report = %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("report body is empty")
	}
}

func TestImportEndpointRequiresFile(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/import/cards", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("import without file = %d, want 400", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Errorf("metrics = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cardfolio_") {
		t.Error("metrics body lacks app series")
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response missing generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want the caller's id echoed", got)
	}
}
