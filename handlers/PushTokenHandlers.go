package handlers

import (
	"backend/services"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterPushToken stores a device token for the current user.
// @Summary Register push token
// @Description Registers the caller's device token for overdue-invoice alerts. Requires Authorization header.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param body body object true "token"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/fcm/register-token [post]
func RegisterPushToken(db *sql.DB, pushService *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireSession(c, db)
		if !ok {
			return
		}

		var request struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Token is required."})
			return
		}

		if pushService == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
			return
		}
		if err := pushService.SavePushToken(userID, request.Token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save push token: " + err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Push token registered successfully"})
	}
}

// RemovePushToken clears the current user's device token.
// @Summary Remove push token
// @Description Removes the caller's device token. Requires Authorization header.
// @Tags Notifications
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/fcm/remove-token [delete]
func RemovePushToken(db *sql.DB, pushService *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireSession(c, db)
		if !ok {
			return
		}

		if err := pushService.RemovePushToken(userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove push token: " + err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Push token removed successfully"})
	}
}
