package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RewardHandler handles earning-related HTTP requests
type RewardHandler struct {
	rewardService services.RewardService
}

// NewRewardHandler creates a new RewardHandler
func NewRewardHandler(rewardService services.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// completeTaskRequest is the body for POST /tasks/:id/complete
type completeTaskRequest struct {
	Proof string `json:"proof"`
}

// redeemReferralRequest is the body for POST /referrals/redeem
type redeemReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// creditPurchaseRequest is the body for POST /admin/users/:id/credit
type creditPurchaseRequest struct {
	Entries   int64  `json:"entries" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"required"`
}

// ListTasks handles GET /tasks
func (h *RewardHandler) ListTasks(c *gin.Context) {
	tasks, err := h.rewardService.ListTasks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// CompleteTask handles POST /tasks/:id/complete
func (h *RewardHandler) CompleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reward, err := h.rewardService.CompleteTask(c.Request.Context(), userID, taskID, req.Proof)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entriesEarned": reward})
}

// RedeemReferral handles POST /referrals/redeem
func (h *RewardHandler) RedeemReferral(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req redeemReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rewardService.RedeemReferral(c.Request.Context(), userID, req.Code); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Referral redeemed"})
}

// ClaimDailyBonus handles POST /rewards/daily
func (h *RewardHandler) ClaimDailyBonus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	bonus, streak, err := h.rewardService.ClaimDailyBonus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entriesEarned": bonus, "streak": streak})
}

// CreateTask handles POST /admin/tasks
func (h *RewardHandler) CreateTask(c *gin.Context) {
	var task models.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rewardService.CreateTask(c.Request.Context(), &task); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// CreditPurchase handles POST /admin/users/:id/credit
func (h *RewardHandler) CreditPurchase(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req creditPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rewardService.CreditPurchase(c.Request.Context(), userID, req.Entries, req.Reference); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entries credited"})
}
