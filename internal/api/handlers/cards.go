package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/models"
	"github.com/cardfolio/cardfolio/internal/repository"
	"github.com/cardfolio/cardfolio/internal/undoredo"
)

type CardHandler struct {
	cards *repository.CardRepository
	log   *undoredo.Log
}

func NewCardHandler(cards *repository.CardRepository, log *undoredo.Log) *CardHandler {
	return &CardHandler{cards: cards, log: log}
}

// ListCards returns a page of the collection. Query parameters: page,
// page_size, search (matches name, set and number, case-insensitive).
func (h *CardHandler) ListCards(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(repository.DefaultPageSize)))
	search := c.Query("search")

	result, err := h.cards.GetPaged(c.Request.Context(), page, pageSize, search)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	card, err := h.cards.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	var card models.Card
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	card.ID = 0

	if err := h.cards.Add(c.Request.Context(), &card); err != nil {
		respondError(c, err)
		return
	}

	h.log.RecordCardAdded(card)
	c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	// Snapshot the stored row before writing so the change can be undone.
	previous, err := h.cards.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var card models.Card
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	card.ID = id

	if err := h.cards.Update(c.Request.Context(), &card); err != nil {
		respondError(c, err)
		return
	}

	h.log.RecordCardUpdated(*previous, card)
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) DeleteCard(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	card, err := h.cards.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.cards.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.log.RecordCardDeleted(*card)
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
