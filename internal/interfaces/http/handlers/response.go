// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http/middleware"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
)

// respondError writes the status and message that belong to err
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	status := apperrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"path":       c.FullPath(),
		}).WithError(err).Error("request failed")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"error": apperrors.PublicMessage(err),
	})
}

func respondInvalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "User not authenticated",
	})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// actingUser returns the authenticated user id or answers 401
func actingUser(c *gin.Context) (uint, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondUnauthenticated(c)
		return 0, false
	}
	return userID, true
}
