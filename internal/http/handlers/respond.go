package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/praxis-backend/internal/platform/apierr"
)

// respondError maps service errors onto the wire: status-coded errors keep
// their status and code, everything else is a 500.
func respondError(c *gin.Context, fallbackCode string, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Code, "detail": apiErr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackCode, "detail": err.Error()})
}
