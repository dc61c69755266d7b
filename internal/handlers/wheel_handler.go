package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ryobiguy/prize-platform/internal/services"
)

// WheelHandler handles wheel-of-fortune HTTP requests
type WheelHandler struct {
	wheelService services.WheelService
}

// NewWheelHandler creates a new WheelHandler
func NewWheelHandler(wheelService services.WheelService) *WheelHandler {
	return &WheelHandler{wheelService: wheelService}
}

// GetWheel handles GET /wheel
func (h *WheelHandler) GetWheel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	canSpin, remaining, err := h.wheelService.CanSpin(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcomes":        h.wheelService.Outcomes(),
		"canSpin":         canSpin,
		"cooldownSeconds": int64(remaining.Seconds()),
	})
}

// Spin handles POST /wheel/spin
func (h *WheelHandler) Spin(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	outcome, err := h.wheelService.Spin(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}
