package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

// JSONError renders the structured error envelope used across the API.
func JSONError(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// JSONErrorDetails is JSONError with a details payload (binding errors etc).
func JSONErrorDetails(c *gin.Context, httpStatus int, code, message, details string) {
	c.JSON(httpStatus, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
