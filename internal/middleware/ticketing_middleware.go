package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/jkfest/jkfest-api/internal/cache"
	"github.com/jkfest/jkfest-api/internal/ticketing"
)

func TicketingMiddleware(svc *ticketing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("ticketing", svc)
		c.Next()
	}
}

func GetTicketingService(c *gin.Context) *ticketing.Service {
	svc, exists := c.Get("ticketing")
	if !exists {
		return nil
	}
	return svc.(*ticketing.Service)
}

func CacheMiddleware(ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("cache", ch)
		c.Next()
	}
}

func GetCache(c *gin.Context) *cache.Cache {
	ch, exists := c.Get("cache")
	if !exists {
		return nil
	}
	return ch.(*cache.Cache)
}
