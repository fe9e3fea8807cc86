package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resort-backend/models"
	"resort-backend/utils"
)

// StaffAuth guards staff-only routes with the bearer token issued at
// login. Expired or unknown tokens are rejected before the handler runs.
func StaffAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "missing bearer token")
			c.Abort()
			return
		}

		var staff models.Staff
		if err := db.Where("api_token = ?", token).First(&staff).Error; err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "invalid token")
			c.Abort()
			return
		}
		if staff.APITokenExpires == nil || staff.APITokenExpires.Before(time.Now()) {
			utils.JSONError(c, http.StatusUnauthorized, "error.tokenExpired", "token expired, please log in again")
			c.Abort()
			return
		}

		c.Set("staffID", staff.ID)
		c.Set("staffUsername", staff.Username)
		c.Next()
	}
}
