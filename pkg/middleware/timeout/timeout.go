package timeout

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware attaches a deadline to the request context so that every store
// call made on behalf of the request gives up after d. Zero disables it.
func Middleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
