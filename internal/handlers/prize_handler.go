package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeHandler handles prize-related HTTP requests
type PrizeHandler struct {
	prizeService services.PrizeService
}

// NewPrizeHandler creates a new PrizeHandler
func NewPrizeHandler(prizeService services.PrizeService) *PrizeHandler {
	return &PrizeHandler{prizeService: prizeService}
}

// enterPrizeRequest is the body for POST /prizes/:id/enter
type enterPrizeRequest struct {
	Entries int64 `json:"entries" binding:"required,gt=0"`
}

// ListPrizes handles GET /prizes
func (h *PrizeHandler) ListPrizes(c *gin.Context) {
	var statuses []models.PrizeStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.PrizeStatus(strings.TrimSpace(s)))
		}
	}

	prizes, err := h.prizeService.ListPrizes(c.Request.Context(), statuses)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prizes)
}

// GetPrize handles GET /prizes/:id
func (h *PrizeHandler) GetPrize(c *gin.Context) {
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

	c.JSON(http.StatusOK, prize)
}

// EnterPrize handles POST /prizes/:id/enter
func (h *PrizeHandler) EnterPrize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prizeID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req enterPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.prizeService.EnterPrize(c.Request.Context(), userID, prizeID, req.Entries); err != nil {
		respondError(c, err)
		return
	}

	prize, err := h.prizeService.GetPrize(c.Request.Context(), prizeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prize":       prize,
		"yourEntries": prize.EntriesFor(userID),
	})
}

// CreatePrize handles POST /admin/prizes
func (h *PrizeHandler) CreatePrize(c *gin.Context) {
	var prize models.Prize
	if err := c.ShouldBindJSON(&prize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.prizeService.CreatePrize(c.Request.Context(), &prize); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, prize)
}

// UpdatePrize handles PUT /admin/prizes/:id
func (h *PrizeHandler) UpdatePrize(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var prize models.Prize
	if err := c.ShouldBindJSON(&prize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prize.ID = id

	if err := h.prizeService.UpdatePrize(c.Request.Context(), &prize); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prize)
}

// CancelPrize handles POST /admin/prizes/:id/cancel
func (h *PrizeHandler) CancelPrize(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	prize, err := h.prizeService.CancelPrize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prize)
}
