package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/metrics"
	"github.com/cardfolio/cardfolio/internal/models"
	"github.com/cardfolio/cardfolio/internal/repository"
	"github.com/cardfolio/cardfolio/internal/undoredo"
)

type SaleHandler struct {
	sales *repository.SaleRepository
	log   *undoredo.Log
}

func NewSaleHandler(sales *repository.SaleRepository, log *undoredo.Log) *SaleHandler {
	return &SaleHandler{sales: sales, log: log}
}

// ListSales returns a page of sales. Query parameters: page, page_size,
// search (matches the sold card's name and set) and date (YYYY-MM-DD,
// filters to sales on that calendar day).
func (h *SaleHandler) ListSales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(repository.DefaultPageSize)))
	search := c.Query("search")

	var saleDate *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
			return
		}
		saleDate = &parsed
	}

	result, err := h.sales.GetPaged(c.Request.Context(), page, pageSize, search, saleDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}

	sale, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// CreateSale records a sale and decrements the sold card's quantity in a
// single transaction.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var sale models.Sale
	if err := c.ShouldBindJSON(&sale); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sale.ID = 0

	if err := h.sales.Add(c.Request.Context(), &sale); err != nil {
		respondError(c, err)
		return
	}

	metrics.SalesRecordedTotal.Inc()
	h.log.RecordSaleAdded(sale)
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}

	previous, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var sale models.Sale
	if err := c.ShouldBindJSON(&sale); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sale.ID = id

	if err := h.sales.Update(c.Request.Context(), &sale); err != nil {
		respondError(c, err)
		return
	}

	h.log.RecordSaleUpdated(*previous, sale)
	c.JSON(http.StatusOK, sale)
}

// DeleteSale removes a sale and restores the sold quantity to the card.
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}

	sale, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.sales.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	metrics.SalesDeletedTotal.Inc()
	h.log.RecordSaleDeleted(*sale)
	c.Status(http.StatusNoContent)
}
