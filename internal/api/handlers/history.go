package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/metrics"
	"github.com/cardfolio/cardfolio/internal/undoredo"
)

type HistoryHandler struct {
	log *undoredo.Log
}

func NewHistoryHandler(log *undoredo.Log) *HistoryHandler {
	return &HistoryHandler{log: log}
}

// Status reports whether undo and redo are available and what they would do.
func (h *HistoryHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"can_undo":         h.log.CanUndo(),
		"can_redo":         h.log.CanRedo(),
		"undo_description": h.log.UndoDescription(),
		"redo_description": h.log.RedoDescription(),
	})
}

func (h *HistoryHandler) Undo(c *gin.Context) {
	if !h.log.CanUndo() {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to undo"})
		return
	}

	description := h.log.UndoDescription()
	if err := h.log.Undo(c.Request.Context()); err != nil {
		metrics.UndoOperationsTotal.WithLabelValues("failed").Inc()
		respondError(c, err)
		return
	}

	metrics.UndoOperationsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"undone": description})
}

func (h *HistoryHandler) Redo(c *gin.Context) {
	if !h.log.CanRedo() {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to redo"})
		return
	}

	description := h.log.RedoDescription()
	if err := h.log.Redo(c.Request.Context()); err != nil {
		metrics.RedoOperationsTotal.WithLabelValues("failed").Inc()
		respondError(c, err)
		return
	}

	metrics.RedoOperationsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"redone": description})
}

func (h *HistoryHandler) Clear(c *gin.Context) {
	h.log.Clear()
	c.Status(http.StatusNoContent)
}
