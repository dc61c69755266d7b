package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ryobiguy/prize-platform/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService  services.DrawService
	prizeService services.PrizeService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService, prizeService services.PrizeService) *DrawHandler {
	return &DrawHandler{drawService: drawService, prizeService: prizeService}
}

// ExecuteDraw handles POST /admin/prizes/:id/draw
func (h *DrawHandler) ExecuteDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	prize, err := h.drawService.DrawWinners(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prize": prize, "winners": prize.Winners})
}

// GetWinners handles GET /prizes/:id/winners
func (h *DrawHandler) GetWinners(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	prize, err := h.prizeService.GetPrize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": prize.Status, "winners": prize.Winners})
}
