package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/services"
)

type PokemonHandler struct {
	client *services.PokeAPIClient
}

func NewPokemonHandler(client *services.PokeAPIClient) *PokemonHandler {
	return &PokemonHandler{client: client}
}

// GetPokemon looks up a Pokémon by name or id. Lookup failures degrade to a
// 404 with no detail; the card itself is never affected by a missing match.
func (h *PokemonHandler) GetPokemon(c *gin.Context) {
	name := c.Param("name")

	pokemon, err := h.client.GetPokemon(c.Request.Context(), name)
	if err != nil {
		slog.Warn("pokemon lookup failed",
			slog.String("name", name),
			slog.Any("error", err))
		c.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}
	if pokemon == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}

	c.JSON(http.StatusOK, pokemon)
}

func (h *PokemonHandler) ListPokemon(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	results, err := h.client.ListPokemon(c.Request.Context(), limit, offset)
	if err != nil {
		slog.Warn("pokemon list failed", slog.Any("error", err))
		c.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
