package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/metrics"
	"github.com/cardfolio/cardfolio/internal/repository"
)

// respondError maps the repository error taxonomy onto HTTP statuses. No
// failure crashes the process; everything resolves to a JSON message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrConcurrencyConflict):
		metrics.ConcurrencyConflictsTotal.Inc()
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"hint":  "the record was modified elsewhere; reload it and retry",
		})
	case errors.Is(err, repository.ErrInsufficientQuantity):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"code":  "insufficient_quantity",
		})
	case errors.Is(err, repository.ErrReferentialIntegrity):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
