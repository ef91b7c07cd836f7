package respond

import "github.com/gin-gonic/gin"

// JSON is the single success writer for API handlers; failures go through
// Error so every error body carries the same envelope.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}
