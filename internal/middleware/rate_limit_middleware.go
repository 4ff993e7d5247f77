package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jkfest/jkfest-api/internal/helpers"
	"github.com/redis/go-redis/v9"
)

// ScanRateLimit caps gate-scan requests per operator with a fixed
// one-minute redis window. Keyed by the authenticated user when
// present, by client IP otherwise.
func ScanRateLimit(rdb *redis.Client, maxPerMinute int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		if userID, exists := c.Get("user_id"); exists {
			identifier = fmt.Sprintf("user:%v", userID)
		}

		key := fmt.Sprintf("ratelimit:scan:%s", identifier)
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down must not lock the gates.
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, time.Minute)
		}
		if count > maxPerMinute {
			helpers.RespondWithError(c, http.StatusTooManyRequests, "Too many scan requests. Please slow down.")
			c.Abort()
			return
		}

		c.Next()
	}
}
