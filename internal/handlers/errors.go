package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusForError maps the service-layer sentinel errors to HTTP statuses
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrPrizeNotFound),
		errors.Is(err, apperrors.ErrTaskNotFound),
		errors.Is(err, apperrors.ErrReferralNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyDrawn),
		errors.Is(err, apperrors.ErrAlreadyCompleted),
		errors.Is(err, apperrors.ErrAlreadyReferred),
		errors.Is(err, apperrors.ErrDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrCooldownActive),
		errors.Is(err, apperrors.ErrDailyLimitReached):
		return http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrMaxEntriesExceeded),
		errors.Is(err, apperrors.ErrMinimumNotMet),
		errors.Is(err, apperrors.ErrNoEntries),
		errors.Is(err, apperrors.ErrPrizeNotActive),
		errors.Is(err, apperrors.ErrOwnReferralCode),
		errors.Is(err, apperrors.ErrInvalidProof),
		errors.Is(err, apperrors.ErrInvalidDates):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error as JSON with the mapped status
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// currentUserID reads the authenticated user's ID set by the JWT middleware
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw := c.GetString("user_id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return primitive.NilObjectID, false
	}
	return id, true
}
